package handler

import (
	"math"
	"strings"

	"notaryfix/internal/compliance"
	"notaryfix/pkg/domain"
	dErrors "notaryfix/pkg/domain-errors"
)

const maxCallerLength = 40

// EvaluateRequest is the HTTP request body for POST /v1/compliance/evaluate.
type EvaluateRequest struct {
	StateCode string           `json:"state_code"`
	ActType   string           `json:"act_type"`
	Fee       *float64         `json:"fee,omitempty"`
	Context   *EvaluateContext `json:"context,omitempty"`
}

// EvaluateContext holds optional caller context.
type EvaluateContext struct {
	SessionTotal *float64 `json:"session_total,omitempty"`
	Caller       string   `json:"caller,omitempty"`
}

// Validate normalizes and checks the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
// A missing state or act is allowed; the report is then empty.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.StateCode = strings.TrimSpace(r.StateCode)
	if r.StateCode != "" {
		code, err := domain.ParseStateCode(r.StateCode)
		if err != nil {
			return err
		}
		r.StateCode = code.String()
	}

	r.ActType = strings.TrimSpace(r.ActType)
	if r.ActType != "" {
		if _, err := domain.ParseActType(r.ActType); err != nil {
			return err
		}
	}

	if r.Fee != nil && !validAmount(*r.Fee) {
		return dErrors.New(dErrors.CodeValidation, "fee must be a non-negative number")
	}
	if r.Context != nil {
		if r.Context.SessionTotal != nil && !validAmount(*r.Context.SessionTotal) {
			return dErrors.New(dErrors.CodeValidation, "context.session_total must be a non-negative number")
		}
		r.Context.Caller = strings.TrimSpace(r.Context.Caller)
		if len(r.Context.Caller) > maxCallerLength {
			return dErrors.New(dErrors.CodeValidation, "context.caller must be at most 40 characters")
		}
	}
	return nil
}

// ToRequest builds the domain request, filling a missing state with
// defaultState.
func (r *EvaluateRequest) ToRequest(defaultState string) compliance.Request {
	req := compliance.Request{
		StateCode: r.StateCode,
		ActType:   r.ActType,
		Fee:       r.Fee,
	}
	if req.StateCode == "" {
		req.StateCode = defaultState
	}
	if r.Context != nil {
		req.Context = compliance.RequestContext{
			SessionTotal: r.Context.SessionTotal,
			Caller:       r.Context.Caller,
		}
	}
	return req
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
