//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/2beens/trainloop/internal/middleware"
	"github.com/2beens/trainloop/internal/training"
	"github.com/2beens/trainloop/internal/training/logs"
	"github.com/2beens/trainloop/internal/training/plans"
	"github.com/2beens/trainloop/internal/training/prescription"
	"github.com/2beens/trainloop/internal/training/progression"
	"github.com/2beens/trainloop/internal/training/sessions"
	"github.com/2beens/trainloop/internal/training/templates"

	"github.com/brianvoe/gofakeit/v6"
)

func (s *IntegrationTestSuite) doRequest(ctx context.Context, method, path, token string, body any, expectedStatus int) []byte {
	t := s.T()

	var reqBody io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		s.Require().NoError(err)
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	s.Require().NoError(err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Require().Equalf(expectedStatus, resp.StatusCode, "%s %s: %s", method, path, respBytes)
	t.Logf("%s %s -> %d", method, path, resp.StatusCode)

	return respBytes
}

func (s *IntegrationTestSuite) getSession(ctx context.Context, token, date string) *sessions.DailySession {
	var session sessions.DailySession
	s.Require().NoError(json.Unmarshal(
		s.doRequest(ctx, "GET", "/training/session/"+date, token, nil, http.StatusOK),
		&session,
	))
	return &session
}

func (s *IntegrationTestSuite) submitLog(ctx context.Context, token, date string, entries []logs.Entry) *training.SubmitResult {
	var result training.SubmitResult
	s.Require().NoError(json.Unmarshal(
		s.doRequest(ctx, "POST", "/training/log", token, training.SubmitLogRequest{
			Date:    date,
			Entries: entries,
		}, http.StatusOK),
		&result,
	))
	return &result
}

func outcomeFor(result *training.SubmitResult, exerciseID string) training.ProgressionOutcome {
	for _, outcome := range result.Outcomes {
		if outcome.ExerciseID == exerciseID {
			return outcome
		}
	}
	return training.ProgressionOutcome{}
}

func entryFor(session *sessions.DailySession, exerciseID string) *sessions.Entry {
	for i := range session.Exercises {
		if session.Exercises[i].ExerciseID == exerciseID {
			return &session.Exercises[i]
		}
	}
	return nil
}

func (s *IntegrationTestSuite) TestTrainingLoop() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	userID := gofakeit.UUID()
	token := s.loginAs(ctx, userID, gofakeit.LetterN(32))

	// no plan yet
	s.doRequest(ctx, "GET", "/training/session/2024-03-10", token, nil, http.StatusNotFound)

	var plan plans.UserPlan
	s.Require().NoError(json.Unmarshal(
		s.doRequest(ctx, "PUT", "/training/plan", token, training.AssignTemplateRequest{TemplateID: fullBodyTemplateID}, http.StatusOK),
		&plan,
	))
	s.Equal(userID, plan.UserID)
	s.Equal(0, plan.CurrentDayIndex)

	// day A, straight from the template and catalog defaults
	first := s.getSession(ctx, token, "2024-03-10")
	s.Require().Len(first.Exercises, 2)
	s.Equal("squat", first.Exercises[0].ExerciseID)
	s.Equal(10, *first.Exercises[0].Planned.Reps)
	s.Equal(templates.VariantBase, first.Exercises[0].Variant)
	s.Equal("plank", first.Exercises[1].ExerciseID)
	s.Equal(60, *first.Exercises[1].Planned.TimeSeconds)

	again := s.getSession(ctx, token, "2024-03-10")
	s.Equal(first.ID, again.ID)

	// one easy day is not enough history to progress
	result := s.submitLog(ctx, token, "2024-03-10", []logs.Entry{
		{ExerciseID: "squat", Status: logs.StatusDone, PerceivedEffort: prescription.Int(5), Notes: gofakeit.Sentence(5)},
		{ExerciseID: "plank", Status: logs.StatusDone, PerceivedEffort: prescription.Int(5)},
	})
	s.Require().Len(result.Outcomes, 2)
	s.Equal(progression.KindSame, outcomeFor(result, "squat").Decision)
	s.Nil(outcomeFor(result, "squat").OverrideSeq)
	s.Equal(progression.KindSame, outcomeFor(result, "plank").Decision)

	second := s.getSession(ctx, token, "2024-03-11")
	s.Equal(0, second.DayIndex)
	s.Equal(10, *entryFor(second, "squat").Planned.Reps)
	s.Equal(60, *entryFor(second, "plank").Planned.TimeSeconds)

	// second easy day: both exercises progress for tomorrow
	result = s.submitLog(ctx, token, "2024-03-11", []logs.Entry{
		{ExerciseID: "squat", Status: logs.StatusDone, PerceivedEffort: prescription.Int(5)},
		{ExerciseID: "plank", Status: logs.StatusDone, PerceivedEffort: prescription.Int(5)},
	})
	s.Equal(progression.KindIncrease, outcomeFor(result, "squat").Decision)
	s.NotNil(outcomeFor(result, "squat").OverrideSeq)
	s.Equal(progression.KindIncrease, outcomeFor(result, "plank").Decision)

	third := s.getSession(ctx, token, "2024-03-12")
	s.Require().NotNil(entryFor(third, "squat"))
	s.Equal(11, *entryFor(third, "squat").Planned.Reps)
	s.Require().NotNil(entryFor(third, "plank"))
	s.Equal(90, *entryFor(third, "plank").Planned.TimeSeconds)

	// squat skipped: swapped for the easier alternative tomorrow
	result = s.submitLog(ctx, token, "2024-03-12", []logs.Entry{
		{ExerciseID: "squat", Status: logs.StatusSkipped},
		{ExerciseID: "plank", Status: logs.StatusDone, PerceivedEffort: prescription.Int(5)},
	})
	s.Equal(progression.KindSwapEasier, outcomeFor(result, "squat").Decision)
	s.Equal(progression.KindIncrease, outcomeFor(result, "plank").Decision)

	fourth := s.getSession(ctx, token, "2024-03-13")
	s.Require().Len(fourth.Exercises, 2)
	s.Nil(entryFor(fourth, "squat"))
	boxSquat := entryFor(fourth, "box-squat")
	s.Require().NotNil(boxSquat)
	s.Equal(templates.VariantEasier, boxSquat.Variant)
	s.Equal("brace", boxSquat.Cue)
	s.Equal(8, *boxSquat.Planned.Reps)
	s.Equal(120, *entryFor(fourth, "plank").Planned.TimeSeconds)

	// the override log is append-only and ordered
	s.Require().NoError(json.Unmarshal(
		s.doRequest(ctx, "GET", "/training/plan", token, nil, http.StatusOK),
		&plan,
	))
	s.Require().Len(plan.Overrides, 4)
	for i := 1; i < len(plan.Overrides); i++ {
		s.Less(plan.Overrides[i-1].Seq, plan.Overrides[i].Seq)
	}
	var replaced []plans.Override
	for _, override := range plan.Overrides {
		if override.Kind == plans.OverrideReplace {
			replaced = append(replaced, override)
		}
	}
	s.Require().Len(replaced, 1)
	s.Equal("2024-03-13", replaced[0].Date)
	s.Equal("squat", replaced[0].ExerciseID)
	s.Equal("box-squat", replaced[0].Payload.To)

	// rotate to day B
	s.Require().NoError(json.Unmarshal(
		s.doRequest(ctx, "POST", "/training/plan/advance", token, nil, http.StatusOK),
		&plan,
	))
	s.Equal(1, plan.CurrentDayIndex)

	fifth := s.getSession(ctx, token, "2024-03-14")
	s.Equal(1, fifth.DayIndex)
	s.Require().Len(fifth.Exercises, 1)
	s.Equal("box-squat", fifth.Exercises[0].ExerciseID)
	s.Equal(12, *fifth.Exercises[0].Planned.Reps)
	s.Equal(3, *fifth.Exercises[0].Planned.Sets)

	// the stored log reads back
	var stored logs.SessionLog
	s.Require().NoError(json.Unmarshal(
		s.doRequest(ctx, "GET", "/training/log/2024-03-12", token, nil, http.StatusOK),
		&stored,
	))
	s.Require().Len(stored.Entries, 2)
	s.Equal(logs.StatusSkipped, stored.Entries[0].Status)
}

func (s *IntegrationTestSuite) TestBackdatedLogsUseHistoryUpToTheirDate() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := s.loginAs(ctx, gofakeit.UUID(), gofakeit.LetterN(32))
	s.doRequest(ctx, "PUT", "/training/plan", token, training.AssignTemplateRequest{TemplateID: fullBodyTemplateID}, http.StatusOK)

	// a full lookback of newer logs without any squat
	for _, date := range []string{"2024-04-10", "2024-04-11", "2024-04-12"} {
		s.submitLog(ctx, token, date, []logs.Entry{
			{ExerciseID: "plank", Status: logs.StatusDone, PerceivedEffort: prescription.Int(5)},
		})
	}

	// squats logged late still progress on their own history
	var result *training.SubmitResult
	for _, date := range []string{"2024-04-01", "2024-04-02", "2024-04-03"} {
		result = s.submitLog(ctx, token, date, []logs.Entry{
			{ExerciseID: "squat", Status: logs.StatusDone, PerceivedEffort: prescription.Int(4)},
		})
	}
	s.Require().Len(result.Outcomes, 1)
	s.Equal(progression.KindIncrease, outcomeFor(result, "squat").Decision)
	s.NotNil(outcomeFor(result, "squat").OverrideSeq)
}

func (s *IntegrationTestSuite) TestSubmitLog_Validation() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := s.loginAs(ctx, gofakeit.UUID(), gofakeit.LetterN(32))

	respBytes := s.doRequest(ctx, "POST", "/training/log", token, training.SubmitLogRequest{
		Date: "2024-03-10",
		Entries: []logs.Entry{
			{ExerciseID: "squat", Status: "crushed", PerceivedEffort: prescription.Int(11)},
		},
	}, http.StatusBadRequest)

	var validationErr training.ValidationError
	s.Require().NoError(json.Unmarshal(respBytes, &validationErr))
	s.Contains(validationErr.FieldErrors, "entries[0].status")
	s.Contains(validationErr.FieldErrors, "entries[0].perceivedEffort")

	// nothing was stored
	s.doRequest(ctx, "GET", "/training/log/2024-03-10", token, nil, http.StatusNotFound)
}

func (s *IntegrationTestSuite) TestAuth() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.doRequest(ctx, "GET", "/training/plan", "", nil, http.StatusUnauthorized)
	s.doRequest(ctx, "GET", "/training/plan", "not-a-session", nil, http.StatusUnauthorized)
	s.doRequest(ctx, "GET", "/health", "", nil, http.StatusOK)

	token := s.loginAs(ctx, gofakeit.UUID(), gofakeit.LetterN(32))
	s.doRequest(ctx, "PUT", "/training/plan", token, training.AssignTemplateRequest{TemplateID: "nope"}, http.StatusBadRequest)
	s.doRequest(ctx, "GET", fmt.Sprintf("/training/session/%s", "10-03-2024"), token, nil, http.StatusBadRequest)
}
