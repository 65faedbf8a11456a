package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Exercises the full suggestion lifecycle against a running server: customer
// message in, poll for the suggestion, agent reply, verify the old suggestion
// is gone.

const baseURL = "http://localhost:3000/api/assist/v1"

func main() {
	color.Cyan("Agent Assist Flow Simulation\n")

	conversationId := uuid.New()
	color.Yellow("\n[1] Ensure HITL mode")
	mustRequest("PUT", "/mode", map[string]interface{}{"mode": "hitl"})

	color.Yellow("\n[2] Customer message arrives")
	mustRequest("POST", fmt.Sprintf("/conversation/%s/customer-message", conversationId), map[string]interface{}{
		"message": "How long does a passport renewal take?",
	})

	color.Yellow("\n[3] Poll for suggestion (bounded backoff)")
	start := time.Now()
	body := mustRequest("GET", fmt.Sprintf("/conversation/%s/suggestion/poll", conversationId), nil)
	color.Green("Polled in %v", time.Since(start))
	prettyPrint(body)

	color.Yellow("\n[4] Agent sends reply (invalidates suggestion)")
	mustRequest("POST", fmt.Sprintf("/conversation/%s/agent-message", conversationId), map[string]interface{}{
		"message": "Standard renewal takes 10 working days.",
	})

	color.Yellow("\n[5] Read suggestion again (must be empty)")
	body = mustRequest("GET", fmt.Sprintf("/conversation/%s/suggestion", conversationId), nil)
	prettyPrint(body)

	color.Yellow("\n[6] Conversation history")
	body = mustRequest("GET", fmt.Sprintf("/conversation/%s/history", conversationId), nil)
	prettyPrint(body)

	color.Cyan("\nDone.")
}

func mustRequest(method, path string, payload map[string]interface{}) []byte {
	var reqBody io.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		color.Red("Failed to build request: %v", err)
		os.Exit(1)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		color.Red("Request failed: %v", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		color.Red("Status: %s", resp.Status)
		prettyPrint(body)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	return body
}

func prettyPrint(body []byte) {
	var v map[string]interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Println(string(body))
		return
	}
	pretty, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(pretty))
}
