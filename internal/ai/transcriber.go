// Package ai wraps the transcription and scoring providers behind small
// interfaces so the analysis pipeline can be exercised with fakes.
package ai

import (
	"context"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/Lllllllleong/voicejournal/internal/apperr"
)

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)
}

// SpeechTranscriber transcribes short daily recordings with the
// Speech-to-Text API. Clips are well under the one-minute synchronous
// recognition limit.
type SpeechTranscriber struct {
	client       *speech.Client
	languageCode string
}

// NewSpeechTranscriber wraps an existing Speech client.
func NewSpeechTranscriber(client *speech.Client, languageCode string) *SpeechTranscriber {
	if languageCode == "" {
		languageCode = "en-US"
	}
	return &SpeechTranscriber{client: client, languageCode: languageCode}
}

func (t *SpeechTranscriber) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	resp, err := t.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   encodingFor(contentType),
			SampleRateHertz:            48000,
			LanguageCode:               t.languageCode,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", apperr.Wrap(apperr.CodeLLMAnalyzeFailed, "transcription request failed", err)
	}

	var parts []string
	for _, result := range resp.GetResults() {
		if alts := result.GetAlternatives(); len(alts) > 0 {
			parts = append(parts, strings.TrimSpace(alts[0].GetTranscript()))
		}
	}
	transcript := strings.TrimSpace(strings.Join(parts, " "))
	if transcript == "" {
		return "", apperr.New(apperr.CodeLLMAnalyzeFailed, "recording produced an empty transcript")
	}
	return transcript, nil
}

// encodingFor maps the uploaded MIME type to a recognition encoding. The
// browser recorder produces webm/opus; older clients send ogg.
func encodingFor(contentType string) speechpb.RecognitionConfig_AudioEncoding {
	switch {
	case strings.Contains(contentType, "ogg"):
		return speechpb.RecognitionConfig_OGG_OPUS
	case strings.Contains(contentType, "wav"):
		return speechpb.RecognitionConfig_LINEAR16
	default:
		return speechpb.RecognitionConfig_WEBM_OPUS
	}
}
