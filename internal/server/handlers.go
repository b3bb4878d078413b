package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"rapport/internal/domain"
	"rapport/internal/service"
)

// AssistantPort is the HTTP-facing subset of the analysis service.
type AssistantPort interface {
	Analyze(ctx context.Context, src domain.Source) (string, error)
	Ask(ctx context.Context, src domain.Source, question string, progress service.ProgressFunc) (service.AnswerResult, error)
}

// SourceResolver turns the session request's inputs into report text.
// The URL form fetches and strips the page; the text form is used as is.
type SourceResolver interface {
	FromURL(ctx context.Context, url string) (domain.Source, error)
	FromText(text string) domain.Source
}

type createSessionRequest struct {
	URL    string `json:"url" validate:"omitempty,url"`
	Text   string `json:"text"`
	Ticker string `json:"ticker" validate:"omitempty,max=12"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

type analyzeRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid4"`
}

type analyzeResponse struct {
	Analysis string `json:"analysis"`
}

type askRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid4"`
	Question  string `json:"question" validate:"required"`
}

type evaluationDTO struct {
	Available       bool    `json:"available"`
	Reason          string  `json:"reason,omitempty"`
	Faithfulness    float64 `json:"faithfulness,omitempty"`
	AnswerRelevancy float64 `json:"answer_relevancy,omitempty"`
}

type askResponse struct {
	Answer     string        `json:"answer"`
	Evaluation evaluationDTO `json:"evaluation"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid JSON body"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
	}
	if req.URL == "" && req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "supply url or text"})
	}

	var src domain.Source
	if req.URL != "" {
		var err error
		src, err = s.resolver.FromURL(c.Context(), req.URL)
		if err != nil {
			s.log.Warn("could not fetch report", zap.String("url", req.URL), zap.Error(err))
			return c.Status(statusFor(err)).JSON(errorResponse{Error: err.Error()})
		}
	} else {
		src = s.resolver.FromText(req.Text)
	}

	st := s.sessions.Start()
	st.Source = src
	st.Ticker = req.Ticker
	s.sessions.Save(st)
	s.log.Info("session created", zap.String("session", st.ID), zap.String("source", src.Identifier))
	return c.JSON(createSessionResponse{SessionID: st.ID})
}

func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid JSON body"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
	}
	st, ok := s.sessions.Get(req.SessionID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "unknown or expired session"})
	}

	analysis, err := s.svc.Analyze(c.Context(), st.Source)
	if err != nil {
		return c.Status(statusFor(err)).JSON(errorResponse{Error: err.Error()})
	}
	st.Analysis = analysis
	s.sessions.Save(st)
	return c.JSON(analyzeResponse{Analysis: analysis})
}

func (s *Server) handleAsk(c *fiber.Ctx) error {
	var req askRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid JSON body"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
	}
	st, ok := s.sessions.Get(req.SessionID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "unknown or expired session"})
	}

	res, err := s.svc.Ask(c.Context(), st.Source, req.Question, nil)
	if err != nil {
		return c.Status(statusFor(err)).JSON(errorResponse{Error: err.Error()})
	}
	st.LastAnswer = res.Answer
	st.Evaluation = res.Evaluation
	s.sessions.Save(st)
	return c.JSON(askResponse{
		Answer: res.Answer,
		Evaluation: evaluationDTO{
			Available:       res.Evaluation.Available,
			Reason:          res.Evaluation.Reason,
			Faithfulness:    res.Evaluation.Faithfulness,
			AnswerRelevancy: res.Evaluation.AnswerRelevancy,
		},
	})
}

func (s *Server) handleEndSession(c *fiber.Ctx) error {
	s.sessions.End(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}
