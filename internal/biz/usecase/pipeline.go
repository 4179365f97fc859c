package usecase

import (
	"github.com/rsdeals/discord-bridge/internal/biz/domain"
)

// PipelineResult is the outcome of one pass through the filter and
// classifier. Exactly one of Filtered or Classification is meaningful;
// when both are unset the message simply had no configured destination.
type PipelineResult struct {
	Filtered       bool
	Reason         domain.FilterReason
	Classification *domain.Classification
}

// PipelineUsecase runs the pre-filter and the rule classifier over an
// inbound message. It owns the classification-layer duplicate window
// through the filter; the forwarding-layer window lives in the
// forwarder and is never shared with this one.
type PipelineUsecase struct {
	filter     *domain.Filter
	classifier *domain.Classifier
}

// NewPipelineUsecase creates a pipeline usecase.
func NewPipelineUsecase(filter *domain.Filter, classifier *domain.Classifier) *PipelineUsecase {
	return &PipelineUsecase{filter: filter, classifier: classifier}
}

// Process filters and classifies a message. It never returns an error:
// a message that cannot be handled is reported as filtered, so one
// malformed message cannot halt the pipeline.
func (uc *PipelineUsecase) Process(m *domain.Message) PipelineResult {
	if reason, drop := uc.filter.Check(m); drop {
		return PipelineResult{Filtered: true, Reason: reason}
	}

	cls, ok := uc.classifier.Classify(m)
	if !ok {
		return PipelineResult{}
	}
	return PipelineResult{Classification: cls}
}
