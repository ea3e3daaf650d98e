package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"inquiry-dashboard/internal/backend"
)

type restError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func tablePath(table string) string {
	return "/rest/v1/" + url.PathEscape(table)
}

func filterQuery(filter backend.Filter) url.Values {
	q := url.Values{}
	for _, cond := range filter {
		q.Add(cond.Column, "eq."+fmt.Sprint(cond.Value))
	}
	return q
}

func queryError(resp *apiResponse) error {
	qe := &backend.QueryError{Status: resp.status}
	var re restError
	if json.Unmarshal(resp.body, &re) == nil && re.Message != "" {
		qe.Code = re.Code
		qe.Message = re.Message
		return qe
	}
	qe.Message = errorMessage(resp.status, resp.body)
	return qe
}

func (c *Client) selectRows(ctx context.Context, table string, columns []string, filter backend.Filter, header http.Header, dest any) error {
	q := filterQuery(filter)
	if len(columns) > 0 {
		q.Set("select", strings.Join(columns, ","))
	}
	resp, err := c.do(ctx, http.MethodGet, tablePath(table), q, header, nil)
	if err != nil {
		return &backend.QueryError{Message: err.Error()}
	}
	if resp.status/100 != 2 {
		return queryError(resp)
	}
	return decodeJSON(resp.body, dest)
}

func (c *Client) Select(ctx context.Context, table string, columns []string, filter backend.Filter, dest any) error {
	return c.selectRows(ctx, table, columns, filter, nil, dest)
}

// SelectSingle asks PostgREST for a single object; it answers 406 unless
// exactly one row matches.
func (c *Client) SelectSingle(ctx context.Context, table string, columns []string, filter backend.Filter, dest any) error {
	header := http.Header{}
	header.Set("Accept", "application/vnd.pgrst.object+json")
	return c.selectRows(ctx, table, columns, filter, header, dest)
}

func (c *Client) Update(ctx context.Context, table string, fields map[string]any, filter backend.Filter) error {
	header := http.Header{}
	header.Set("Prefer", "return=minimal")
	resp, err := c.do(ctx, http.MethodPatch, tablePath(table), filterQuery(filter), header, fields)
	if err != nil {
		return &backend.QueryError{Message: err.Error()}
	}
	if resp.status/100 != 2 {
		return queryError(resp)
	}
	return nil
}

func decodeJSON(body []byte, dest any) error {
	if dest == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
