package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2/google"
)

const visionEndpoint = "https://vision.googleapis.com/v1/images:annotate"

// VisionClient recognizes text with the Google Vision API.
type VisionClient struct {
	credsJSON []byte
	httpc     *http.Client
}

// NewVision builds a client from service-account credentials JSON.
func NewVision(credsJSON string) *VisionClient {
	return &VisionClient{
		credsJSON: []byte(credsJSON),
		httpc:     &http.Client{Timeout: 30 * time.Second},
	}
}

// accessToken gets an OAuth2 access token from the service account.
func (c *VisionClient) accessToken(ctx context.Context) (string, error) {
	creds, err := google.CredentialsFromJSON(ctx, c.credsJSON, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", fmt.Errorf("parsing credentials: %w", err)
	}
	token, err := creds.TokenSource.Token()
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	return token.AccessToken, nil
}

type annotateImage struct {
	Content string `json:"content"`
}

type annotateFeature struct {
	Type string `json:"type"`
}

type annotateEntry struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateRequest struct {
	Requests []annotateEntry `json:"requests"`
}

type annotateResponse struct {
	Responses []struct {
		FullTextAnnotation struct {
			Text string `json:"text"`
		} `json:"fullTextAnnotation"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// RecognizeText sends the image to the Vision text-detection endpoint.
func (c *VisionClient) RecognizeText(ctx context.Context, image []byte) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	reqBody := annotateRequest{Requests: []annotateEntry{{
		Image:    annotateImage{Content: base64.StdEncoding.EncodeToString(image)},
		Features: []annotateFeature{{Type: "TEXT_DETECTION"}},
	}}}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, visionEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling vision api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vision api status %d: %s", resp.StatusCode, body)
	}

	var out annotateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(out.Responses) == 0 {
		return "", nil
	}
	if e := out.Responses[0].Error; e != nil {
		return "", fmt.Errorf("vision api: %s", e.Message)
	}
	return out.Responses[0].FullTextAnnotation.Text, nil
}
