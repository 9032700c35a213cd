package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"

	"llm-taskbench/pkg/utils"
)

// Walks a wizard session end to end against a running gateway:
// state, add documents, pick extractor, splits, generate, save.

var (
	baseURL   = envOr("GATEWAY_URL", "http://localhost:3000/api")
	token     = os.Getenv("GATEWAY_TOKEN")
	projectID = envOr("PROJECT_ID", "proj_demo")
	taskID    = envOr("TASK_ID", "task_demo")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{} // generation can run for minutes
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

// The wizard page declares its routes in the UI's grouped template
// form; sanitizing them yields the gateway paths.
func wizardRoute(suffix string) string {
	template := fmt.Sprintf("(app)/wizard/v1/[%s]/[%s]", projectID, taskID)
	return utils.SanitizeRoute(template) + suffix
}

func step(name, method, url string, body interface{}) map[string]interface{} {
	color.Yellow("\n%s", name)
	resp, respBody, err := sendRequest(method, url, body)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	var parsed map[string]interface{}
	json.Unmarshal(respBody, &parsed)
	prettyPrint(parsed)
	return parsed
}

func main() {
	color.Cyan("Wizard walkthrough against %s (%s/%s)\n", baseURL, projectID, taskID)

	step("1. Current session state", "GET", wizardRoute(""), nil)

	step("2. Add documents by tag", "POST", wizardRoute("/documents"), map[string]interface{}{
		"tags": []string{"demo"},
	})

	extractors := step("3. Available extractors", "GET",
		fmt.Sprintf("/catalog/v1/projects/%s/extractors", projectID), nil)
	if data, ok := extractors["data"].([]interface{}); ok && len(data) > 0 {
		first := data[0].(map[string]interface{})
		step("4. Select extractor", "PUT", wizardRoute("/extractor"), map[string]interface{}{
			"extractor_id": first["id"],
		})
		step("5. Run extraction", "POST", wizardRoute("/extraction"), nil)
	} else {
		color.Red("No extractors available, skipping extraction")
	}

	step("6. Set dataset splits", "PUT", wizardRoute("/splits"), map[string]interface{}{
		"splits": map[string]float64{"train": 0.8, "test": 0.2},
	})

	step("7. Generate pairs for everything", "POST", wizardRoute("/generate"), map[string]interface{}{
		"target": map[string]interface{}{"type": "all"},
	})

	step("8. Save all pairs", "POST", wizardRoute("/save"), nil)

	step("9. Final state", "GET", wizardRoute(""), nil)

	color.Cyan("\nDone")
}
