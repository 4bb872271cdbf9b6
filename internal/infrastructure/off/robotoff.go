package off

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/openfoodfacts-mcp/backend/internal/domain"
)

const (
	statusFound       = "found"
	statusNoQuestions = "no_questions"
)

// Questions reads Robotoff questions for one product, or random ones when
// the query has no barcode.
func (c *Client) Questions(ctx context.Context, q domain.QuestionQuery) (*domain.QuestionsResult, error) {
	if err := errBarcode(q.Barcode); err != nil {
		return nil, err
	}

	path := "random"
	if q.Barcode != "" {
		path = url.PathEscape(q.Barcode)
	}

	params := url.Values{}
	if q.InsightType != "" {
		params.Set("insight_types", q.InsightType)
	}
	if q.Lang != "" {
		params.Set("lang", q.Lang)
	}
	if q.Count > 0 {
		params.Set("count", strconv.Itoa(q.Count))
	}
	reqURL := fmt.Sprintf("%s/questions/%s?%s", c.cfg.RobotoffBaseURL, path, params.Encode())

	var resp questionsResponse
	if err := c.getJSON(ctx, serviceRobotoff, reqURL, &resp, "status"); err != nil {
		return nil, err
	}

	questions := make([]domain.QuestionRecord, 0, len(resp.Questions))
	for i := range resp.Questions {
		questions = append(questions, MapQuestion(&resp.Questions[i]))
	}

	status := resp.Status
	if status == "" {
		status = statusFound
		if len(questions) == 0 {
			status = statusNoQuestions
		}
	}

	return &domain.QuestionsResult{
		Status:    status,
		Questions: questions,
		Count:     len(questions),
	}, nil
}

// Insights lists Robotoff insights that have not been annotated yet.
func (c *Client) Insights(ctx context.Context, q domain.InsightQuery) (*domain.InsightsResult, error) {
	if err := errBarcode(q.Barcode); err != nil {
		return nil, err
	}

	params := url.Values{}
	if q.Barcode != "" {
		params.Set("barcode", q.Barcode)
	}
	if q.InsightType != "" {
		params.Set("insight_types", q.InsightType)
	}
	if q.Country != "" {
		params.Set("countries", q.Country)
	}
	if q.Count > 0 {
		params.Set("count", strconv.Itoa(q.Count))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	params.Set("annotated", "0")
	reqURL := fmt.Sprintf("%s/insights?%s", c.cfg.RobotoffBaseURL, params.Encode())

	var resp insightsResponse
	if err := c.getJSON(ctx, serviceRobotoff, reqURL, &resp, "status"); err != nil {
		return nil, err
	}

	insights := make([]domain.InsightRecord, 0, len(resp.Insights))
	for i := range resp.Insights {
		insights = append(insights, MapInsight(&resp.Insights[i]))
	}

	status := resp.Status
	if status == "" {
		status = statusFound
	}
	count := resp.Count.Int()
	if count == 0 {
		count = len(insights)
	}

	return &domain.InsightsResult{
		Status:   status,
		Insights: insights,
		Count:    count,
	}, nil
}
