// Client for the wedding-video generation backend.
//
// Response shapes follow the backend's JSON: generation endpoints answer with
// status/message plus whichever of image_url/video_url/placeholder_url apply.
// A non-2xx response that still carries a fallback URL is a degraded success,
// not a failure; that decision belongs to the caller, so methods surface the
// decoded body and status code rather than turning non-2xx into an error.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const mediaPrefix = "/api/media/"

// GenResponse is the decoded body of a generation endpoint.
type GenResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	ID             string `json:"id"`
	ImageURL       string `json:"image_url"`
	VideoURL       string `json:"video_url"`
	VideoPath      string `json:"video_path"`
	PlaceholderURL string `json:"placeholder_url"`
}

// EditCartelRequest is the payload for poster image generation.
type EditCartelRequest struct {
	ID       string `json:"id"`
	Name1    string `json:"nombre1"`
	Name2    string `json:"nombre2"`
	Email1   string `json:"email1"`
	Email2   string `json:"email2"`
	Phone1   string `json:"telef1"`
	Phone2   string `json:"telef2"`
	Date     string `json:"fecha"`
	ImageURL string `json:"image_url"`
}

// CartelVideoRequest is the payload for poster video generation.
type CartelVideoRequest struct {
	ID       string `json:"id"`
	Name1    string `json:"nombre1"`
	Name2    string `json:"nombre2"`
	ImageURL string `json:"image_url"`
	Demo     bool   `json:"demo"`
}

// CoupleVideoRequest is the payload for couple video generation.
type CoupleVideoRequest struct {
	ID       string `json:"id"`
	ImageURL string `json:"image_url"`
	Demo     bool   `json:"demo"`
}

// FinalVideoRequest is the payload for final assembly.
type FinalVideoRequest struct {
	ID            string `json:"id"`
	Name1         string `json:"nombre1"`
	Name2         string `json:"nombre2"`
	Email1        string `json:"email1"`
	Email2        string `json:"email2"`
	CartelVideo   string `json:"cartel_video"`
	PolaroidVideo string `json:"polaroid_video,omitempty"`
	ParejaVideo   string `json:"pareja_video"`
}

// GenerationClient talks to the generation backend over plain JSON and
// multipart POSTs.
type GenerationClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGenerationClient creates a client for the backend at baseURL.
func NewGenerationClient(baseURL string, client *http.Client) *GenerationClient {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &GenerationClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// BaseURL returns the configured backend origin.
func (c *GenerationClient) BaseURL() string {
	return c.baseURL
}

// postJSON issues a JSON POST and decodes the generation response.
//
// Returns the HTTP status code alongside the body; only transport and decode
// failures produce a non-nil error.
func (c *GenerationClient) postJSON(ctx context.Context, path string, body any) (*GenResponse, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeGenResponse(resp)
}

// postMultipart issues a multipart POST with the given form fields and one
// file part read from filePath.
func (c *GenerationClient) postMultipart(ctx context.Context, path string, fields map[string]string, fileField, filePath string) (*GenResponse, int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, 0, fmt.Errorf("failed to write form field: %w", err)
		}
	}

	part, err := writer.CreateFormFile(fileField, filepath.Base(filePath))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, 0, fmt.Errorf("failed to read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, 0, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeGenResponse(resp)
}

func decodeGenResponse(resp *http.Response) (*GenResponse, int, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	var gen GenResponse
	if err := json.Unmarshal(body, &gen); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}

	return &gen, resp.StatusCode, nil
}

// SaveImage uploads the couple photo and returns the backend-assigned run ID
// and hosted image URL.
func (c *GenerationClient) SaveImage(ctx context.Context, imagePath string) (*GenResponse, int, error) {
	return c.postMultipart(ctx, "/api/saveImage", nil, "file", imagePath)
}

// CreateCartel generates a poster from the two names alone.
func (c *GenerationClient) CreateCartel(ctx context.Context, name1, name2 string) (*GenResponse, int, error) {
	return c.postJSON(ctx, "/api/create_cartel", map[string]string{
		"nombre1": name1,
		"nombre2": name2,
	})
}

// EditCartelImage renders the save-the-date poster image.
func (c *GenerationClient) EditCartelImage(ctx context.Context, req EditCartelRequest) (*GenResponse, int, error) {
	return c.postJSON(ctx, "/api/edit_cartel_image", req)
}

// CreateCartelVideo animates the poster image.
func (c *GenerationClient) CreateCartelVideo(ctx context.Context, req CartelVideoRequest) (*GenResponse, int, error) {
	return c.postJSON(ctx, "/api/create_cartel_video", req)
}

// CreatePolaroid generates the polaroid image and video from the uploaded
// photo and the event date.
func (c *GenerationClient) CreatePolaroid(ctx context.Context, date, imagePath string) (*GenResponse, int, error) {
	return c.postMultipart(ctx, "/api/create_polaroid", map[string]string{"fecha": date}, "imagen", imagePath)
}

// CreateCoupleVideo generates the AI couple video from the hosted photo.
func (c *GenerationClient) CreateCoupleVideo(ctx context.Context, req CoupleVideoRequest) (*GenResponse, int, error) {
	return c.postJSON(ctx, "/api/create_video_pareja", req)
}

// GenerateFinalVideo submits the artifact references for composition.
func (c *GenerationClient) GenerateFinalVideo(ctx context.Context, req FinalVideoRequest) (*GenResponse, int, error) {
	return c.postJSON(ctx, "/api/generate_final_video", req)
}

// SendWhatsApp asks the backend to send the notification template to the
// given phone number.
func (c *GenerationClient) SendWhatsApp(ctx context.Context, to string) error {
	payload, err := json.Marshal(map[string]string{"to": EnsureE164(to)})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/whatsapp/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp send failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}

// ResolveMediaURL makes a backend-relative media path absolute. Absolute URLs
// pass through unchanged.
func (c *GenerationClient) ResolveMediaURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// RelativeMediaPath normalizes an artifact URL for the assembly request.
//
// Absolute URLs pointing at the backend origin are reduced to their path, and
// the media-serving prefix is stripped. Foreign origins (blob storage) and
// already-relative paths are returned as-is.
func (c *GenerationClient) RelativeMediaPath(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return strings.TrimPrefix(rawURL, mediaPrefix)
	}

	base, err := url.Parse(c.baseURL)
	if err != nil || parsed.Host != base.Host {
		return rawURL
	}

	return strings.TrimPrefix(parsed.Path, mediaPrefix)
}

// EnsureE164 normalizes a phone number to E.164, assuming Spain (+34) when no
// country prefix is present. Mirrors the backend's normalization so the
// preview shown to the user matches what gets dialed.
func EnsureE164(msisdn string) string {
	msisdn = strings.ReplaceAll(strings.TrimSpace(msisdn), " ", "")
	if strings.HasPrefix(msisdn, "+") {
		return msisdn
	}
	msisdn = strings.TrimPrefix(msisdn, "0")
	return "+34" + msisdn
}
