package swapper

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/garment-swap-kit/pkg/domain"
)

// --- Mocks ---

// scriptedCall は mockGenerator の一回分の応答台本です。
type scriptedCall struct {
	resp *gemini.Response
	err  error
}

type mockGenerator struct {
	script    []scriptedCall
	calls     int
	lastParts []*genai.Part
}

func (m *mockGenerator) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	m.lastParts = parts
	if m.calls >= len(m.script) {
		return nil, fmt.Errorf("unexpected call #%d", m.calls+1)
	}
	call := m.script[m.calls]
	m.calls++
	return call.resp, call.err
}

type mockLoader struct {
	images map[domain.ImageRef][]byte
	errs   map[domain.ImageRef]error
}

func (m *mockLoader) Load(ctx context.Context, ref domain.ImageRef) ([]byte, error) {
	if err, ok := m.errs[ref]; ok {
		return nil, err
	}
	data, ok := m.images[ref]
	if !ok {
		return nil, fmt.Errorf("not found: %s", ref)
	}
	return data, nil
}

// recordSleeper は実際には待機せず、要求された待機時間を記録します。
type recordSleeper struct {
	slept []time.Duration
}

func (s *recordSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)
	return nil
}

// --- Helpers ---

func dummyPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{200, 50, 50, 255})
		}
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("failed to encode dummy image: %v", err)
	}
	return buf.Bytes()
}

func imageResponse(data []byte) *gemini.Response {
	return &gemini.Response{
		RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{
					Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: "image/png", Data: data}}},
				},
			}},
		},
	}
}

func textOnlyResponse(text string) *gemini.Response {
	return &gemini.Response{
		RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{
					Parts: []*genai.Part{{Text: text}},
				},
			}},
		},
	}
}
