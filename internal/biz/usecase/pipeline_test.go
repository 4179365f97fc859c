package usecase

import (
	"testing"
	"time"

	"github.com/rsdeals/discord-bridge/internal/biz/domain"
)

func newTestPipeline() *PipelineUsecase {
	filter := domain.NewFilter(
		[]string{"rs pinger"},
		[]string{"discord"},
		10*time.Second,
	)
	classifier := domain.NewClassifier(
		domain.Targets{Upcoming: 1, Amazon: 2, Mavely: 3, Default: 4},
		[]string{`walmart\.com`},
	)
	return NewPipelineUsecase(filter, classifier)
}

func TestPipeline_FilteredMessage(t *testing.T) {
	uc := newTestPipeline()

	m := &domain.Message{Author: domain.Author{ID: "1", Username: "RS Pinger"}, Content: "x"}
	res := uc.Process(m)
	if !res.Filtered || res.Reason != domain.FilterDeniedAuthor {
		t.Errorf("Expected denied_author, got %+v", res)
	}
	if res.Classification != nil {
		t.Error("Filtered message must not be classified")
	}
}

func TestPipeline_ClassifiedMessage(t *testing.T) {
	uc := newTestPipeline()

	m := &domain.Message{
		Author:  domain.Author{ID: "1", Username: "alice"},
		Content: "https://www.amazon.com/dp/B0AAAA0000",
	}
	res := uc.Process(m)
	if res.Filtered {
		t.Fatalf("Expected pass, got filtered (%s)", res.Reason)
	}
	if res.Classification == nil || res.Classification.Tag != domain.TagAmazon {
		t.Errorf("Expected AMAZON classification, got %+v", res.Classification)
	}
}

func TestPipeline_DuplicateSuppressedOnSecondPass(t *testing.T) {
	uc := newTestPipeline()

	m := &domain.Message{
		Author:  domain.Author{ID: "1", Username: "alice"},
		Content: "https://www.walmart.com/ip/1",
	}
	if res := uc.Process(m); res.Filtered {
		t.Fatalf("First pass should not filter, got %s", res.Reason)
	}
	res := uc.Process(m)
	if !res.Filtered || res.Reason != domain.FilterDuplicate {
		t.Errorf("Expected duplicate on second pass, got %+v", res)
	}
}

func TestPipeline_NoDestinationIsNoOp(t *testing.T) {
	filter := domain.NewFilter(nil, nil, 10*time.Second)
	classifier := domain.NewClassifier(domain.Targets{}, nil)
	uc := NewPipelineUsecase(filter, classifier)

	res := uc.Process(&domain.Message{Author: domain.Author{ID: "1", Username: "alice"}, Content: "hello"})
	if res.Filtered || res.Classification != nil {
		t.Errorf("Expected no-op result, got %+v", res)
	}
}
