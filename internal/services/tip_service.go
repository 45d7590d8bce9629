package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// TipInput is the structured recovery-status payload sent to the model
type TipInput struct {
	PainLevel       int
	SwellingLevel   int
	MedicationTaken string
	Notes           string
	PhotoDataURI    string // data URI or stored retrieval URL, optional
	SurgeryType     string
	SurgeryDate     string
	UserName        string
}

// TipService generates personalized recovery tips via Gemini
type TipService struct {
	client *genai.Client
}

func NewTipService(ctx context.Context, apiKey string) (*TipService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &TipService{client: client}, nil
}

// GenerateRecoveryTips asks the model for free-text recovery advice based on
// the user's daily log. No retry is performed; any error is the caller's to
// report as a tip-generation failure.
func (s *TipService) GenerateRecoveryTips(ctx context.Context, input *TipInput) (string, error) {
	model := s.client.GenerativeModel("gemini-1.5-flash")

	prompt := buildTipPrompt(input)

	var parts []genai.Part
	if input.PhotoDataURI != "" {
		mimeType, imageData, err := resolvePhoto(input.PhotoDataURI)
		if err != nil {
			return "", err
		}
		parts = append(parts, genai.ImageData(mimeType, imageData))
	}
	parts = append(parts, genai.Text(prompt))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	tips := strings.TrimSpace(sb.String())
	if tips == "" {
		return "", fmt.Errorf("no text in model response")
	}
	return tips, nil
}

func buildTipPrompt(input *TipInput) string {
	var sb strings.Builder
	sb.WriteString("You are a virtual assistant providing personalized recovery tips to patients after surgery.\n\n")
	sb.WriteString("Based on the user's daily log, provide tips and suggestions to improve their recovery process.\n")
	sb.WriteString("Consider the pain level, swelling level, medications taken, and any additional notes provided by the user.\n")
	if input.PhotoDataURI != "" {
		sb.WriteString("A photo of the recovery area is attached; analyze it to provide more specific and tailored advice.\n")
	}
	sb.WriteString(fmt.Sprintf("The user had a %s surgery on %s.\n\n", input.SurgeryType, input.SurgeryDate))
	sb.WriteString("Here is the user's recovery log:\n")
	sb.WriteString(fmt.Sprintf("- Pain Level: %d\n", input.PainLevel))
	sb.WriteString(fmt.Sprintf("- Swelling Level: %d\n", input.SwellingLevel))
	sb.WriteString(fmt.Sprintf("- Medication Taken: %s\n", input.MedicationTaken))
	sb.WriteString(fmt.Sprintf("- Notes: %s\n\n", input.Notes))
	sb.WriteString(fmt.Sprintf("Provide specific and actionable advice to help the user improve their recovery. Address the user as %s.\n", input.UserName))
	return sb.String()
}

// resolvePhoto turns the submission's photo reference into raw image bytes.
// A new/changed photo arrives as a base64 data URI; an unchanged photo is
// referenced by its stored retrieval URL and must be downloaded.
func resolvePhoto(source string) (string, []byte, error) {
	if strings.HasPrefix(source, "data:") {
		return decodeDataURI(source)
	}
	return downloadImage(source)
}

func decodeDataURI(uri string) (string, []byte, error) {
	rest := strings.TrimPrefix(uri, "data:")
	semi := strings.Index(rest, ";base64,")
	if semi == -1 {
		return "", nil, fmt.Errorf("invalid photo data URI")
	}
	mimeType := rest[:semi]
	data, err := base64.StdEncoding.DecodeString(rest[semi+len(";base64,"):])
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode photo data URI: %w", err)
	}
	return mimeType, data, nil
}

func downloadImage(url string) (string, []byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", nil, fmt.Errorf("failed to download photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("failed to download photo: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read photo data: %w", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return mimeType, data, nil
}
