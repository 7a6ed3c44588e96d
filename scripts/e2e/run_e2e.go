// Package main runs end-to-end smoke tests of the helpline webhook flow
// against a running instance.
//
// Scenarios cover:
//   - Health endpoint liveness
//   - First contact re-prompt (unrecognized topic)
//   - Topic selection acknowledgment
//   - Active-topic conversation reply shape
//   - "new session" reset
//   - Blank-body acknowledgment
//
// Usage:
//
//	API_BASE_URL=http://localhost:8080 go run scripts/e2e/run_e2e.go [scenario-name]
package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

type scenario struct {
	name string
	run  func(baseURL string) error
}

var scenarios = []scenario{
	{"health", runHealth},
	{"first-contact", runFirstContact},
	{"topic-selection", runTopicSelection},
	{"reset", runReset},
	{"blank-body", runBlankBody},
}

const testSender = "whatsapp:+15550009999"

func main() {
	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	only := ""
	if len(os.Args) > 1 {
		only = os.Args[1]
	}

	failed := 0
	for _, sc := range scenarios {
		if only != "" && sc.name != only {
			continue
		}
		start := time.Now()
		err := sc.run(baseURL)
		if err != nil {
			failed++
			fmt.Printf("FAIL  %-16s %v (%s)\n", sc.name, err, time.Since(start).Round(time.Millisecond))
			continue
		}
		fmt.Printf("PASS  %-16s (%s)\n", sc.name, time.Since(start).Round(time.Millisecond))
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func runHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health returned %d", resp.StatusCode)
	}
	return nil
}

func runFirstContact(baseURL string) error {
	// Reset first so the scenario starts from a clean session.
	if _, err := postWebhook(baseURL, testSender, "new session"); err != nil {
		return err
	}
	body, err := postWebhook(baseURL, testSender, "gibberish that matches no topic")
	if err != nil {
		return err
	}
	return expectTwiML(body)
}

func runTopicSelection(baseURL string) error {
	if _, err := postWebhook(baseURL, testSender, "new session"); err != nil {
		return err
	}
	body, err := postWebhook(baseURL, testSender, "career guidance")
	if err != nil {
		return err
	}
	return expectTwiML(body)
}

func runReset(baseURL string) error {
	body, err := postWebhook(baseURL, testSender, "  New Session ")
	if err != nil {
		return err
	}
	return expectTwiML(body)
}

func runBlankBody(baseURL string) error {
	body, err := postWebhook(baseURL, testSender, "   ")
	if err != nil {
		return err
	}
	return expectTwiML(body)
}

func postWebhook(baseURL, from, body string) (string, error) {
	form := url.Values{}
	form.Set("MessageSid", fmt.Sprintf("SMe2e%d", time.Now().UnixNano()))
	form.Set("From", from)
	form.Set("Body", body)

	resp, err := http.PostForm(baseURL+"/messaging/twilio/webhook", form)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return string(raw), nil
}

func expectTwiML(body string) error {
	if !strings.Contains(body, "<Response></Response>") {
		return fmt.Errorf("expected empty TwiML ack, got %q", body)
	}
	return nil
}
