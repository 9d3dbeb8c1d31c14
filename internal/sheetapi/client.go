package sheetapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL points at the hosted sheet service; override it with the
// --server flag or the LEDGER_SERVER environment variable.
const DefaultBaseURL = "https://sheets.arcane-ledger.dev"

// Client mirrors remote character records into the local data directory.
// The mirror is read-only: resource spending happens locally and is never
// pushed back.
type Client struct {
	client  *http.Client
	baseURL string
	dataDir string
	force   bool
}

func NewClient(baseURL, dataDir string, force bool) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		dataDir: dataDir,
		force:   force,
	}
}

type ListResponse struct {
	Count   int `json:"count"`
	Results []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"results"`
}

// FetchList retrieves the index of characters visible to this account.
func (c *Client) FetchList() (*ListResponse, error) {
	url := fmt.Sprintf("%s/api/characters", c.baseURL)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: %s", url, resp.Status)
	}

	var list ListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, err
	}

	return &list, nil
}

// FetchRecord retrieves one character record as a generic document.
func (c *Client) FetchRecord(id string) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/api/characters/%s", c.baseURL, id)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: %s", url, resp.Status)
	}

	var record map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, err
	}

	return record, nil
}

// Mirror writes a fetched record to <dataDir>/characters/<id>.yaml.
// Existing files are kept unless the client was built with force.
func (c *Client) Mirror(id string) (string, error) {
	localPath := filepath.Join(c.dataDir, "characters", id+".yaml")
	if !c.force {
		if _, err := os.Stat(localPath); err == nil {
			return localPath, nil
		}
	}

	record, err := c.FetchRecord(id)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(localPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(Transform(record)); err != nil {
		return "", err
	}
	return localPath, enc.Close()
}

// Transform normalizes a remote record for local use: absolute service URLs
// become relative refs so the mirrored files stay portable.
func Transform(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		transformed := make(map[string]interface{})
		for key, val := range v {
			if key == "url" {
				if strVal, ok := val.(string); ok && strings.HasPrefix(strVal, "/api/") {
					transformed["ref"] = strings.TrimPrefix(strVal, "/api/") + ".yaml"
					continue
				}
			}
			transformed[key] = Transform(val)
		}
		return transformed
	case []interface{}:
		var transformed []interface{}
		for _, item := range v {
			transformed = append(transformed, Transform(item))
		}
		return transformed
	default:
		return v
	}
}
