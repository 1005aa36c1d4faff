package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runGet(apiURL, path string, params map[string]string, out io.Writer) error {
	u := apiURL + path
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}
	resp, err := http.Get(u)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return writeResponse(resp, out)
}

func runPost(apiURL, path string, payload map[string]interface{}, out io.Writer) error {
	body, _ := json.Marshal(payload)
	resp, err := http.Post(apiURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return writeResponse(resp, out)
}

func runChat(apiURL, message, mode, language string, out io.Writer) error {
	payload := map[string]interface{}{"message": message}
	if mode != "" {
		payload["personality_mode"] = mode
	}
	if language != "" {
		payload["language"] = language
	}
	return runPost(apiURL, "/api/chat", payload, out)
}

func runMoodLog(apiURL, mood, note string, out io.Writer) error {
	payload := map[string]interface{}{"mood": mood}
	if note != "" {
		payload["note"] = note
	}
	return runPost(apiURL, "/api/mood", payload, out)
}

func runTaskAdd(apiURL, title, priority, due string, out io.Writer) error {
	payload := map[string]interface{}{"title": title}
	if priority != "" {
		payload["priority"] = priority
	}
	if due != "" {
		payload["due_date"] = due
	}
	return runPost(apiURL, "/api/tasks", payload, out)
}

func runSearch(apiURL, query string, limit int, out io.Writer) error {
	if query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return runPost(apiURL, "/api/search", map[string]interface{}{
		"query": query,
		"limit": limit,
	}, out)
}

func writeResponse(resp *http.Response, out io.Writer) error {
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	_, err := io.Copy(out, resp.Body)
	return err
}
