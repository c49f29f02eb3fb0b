// Package batch enriches many companies through the worker pool and renders
// the results as CSV or JSONL.
package batch

import (
	"context"
	"strings"
	"time"

	"github.com/shpitdev/vc-enricher/internal/enrich"
	"github.com/shpitdev/vc-enricher/pkg/pipeline/redact"
	"github.com/shpitdev/vc-enricher/pkg/pipeline/worker"
	"github.com/shpitdev/vc-enricher/pkg/profile"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Row is the stable output schema for one input company.
type Row struct {
	ID        string           `json:"id,omitempty"`
	Name      string           `json:"name,omitempty"`
	Website   string           `json:"website"`
	Status    string           `json:"status"`
	Error     string           `json:"error,omitempty"`
	ErrorKind string           `json:"errorKind,omitempty"`
	Profile   *profile.Profile `json:"profile,omitempty"`
}

type Options struct {
	Workers        int
	RequestTimeout time.Duration
	RateLimitRPS   float64
	FailFast       bool
}

func (o Options) workerOptions() worker.Options {
	policy := worker.FailurePolicyPartialOutput
	if o.FailFast {
		policy = worker.FailurePolicyFailFast
	}
	return worker.Options{
		Workers:        o.Workers,
		RequestTimeout: o.RequestTimeout,
		RateLimitRPS:   o.RateLimitRPS,
		FailurePolicy:  policy,
	}
}

// EnrichCompanies runs the enricher over all companies and returns one row
// per input company, in input order.
//
// Errors from enrichment are recorded per-row and do not fail the run unless
// FailFast is set.
func EnrichCompanies(ctx context.Context, companies []profile.Company, enricher enrich.Enricher, opts Options) ([]Row, error) {
	plan := newPlan(companies)
	out, err := worker.ProcessAll(ctx, plan.pending, requestFn(enricher), opts.workerOptions())
	if err != nil {
		return nil, err
	}
	rows := make([]Row, len(companies))
	for _, res := range out {
		for _, idx := range plan.fanout[res.Index] {
			rows[idx] = buildRow(companies[idx], res.Output, res.Err)
		}
	}
	return rows, nil
}

// EnrichCompaniesStream is EnrichCompanies with rows delivered to onRow as
// they complete. onRow is never called concurrently; an error from it stops
// the run.
func EnrichCompaniesStream(
	ctx context.Context,
	companies []profile.Company,
	enricher enrich.Enricher,
	opts Options,
	onRow func(Row) error,
) error {
	plan := newPlan(companies)
	_, err := worker.ProcessAllWithCallback(ctx, plan.pending, requestFn(enricher),
		func(res worker.Result[profile.Company, profile.Profile]) error {
			for _, idx := range plan.fanout[res.Index] {
				if err := onRow(buildRow(companies[idx], res.Output, res.Err)); err != nil {
					return err
				}
			}
			return nil
		},
		opts.workerOptions(),
	)
	return err
}

// Counts returns the number of ok and error rows.
func Counts(rows []Row) (ok int, failed int) {
	for _, r := range rows {
		if r.Status == StatusOK {
			ok++
			continue
		}
		failed++
	}
	return ok, failed
}

func requestFn(enricher enrich.Enricher) func(context.Context, profile.Company) (profile.Profile, error) {
	return func(ctx context.Context, c profile.Company) (profile.Profile, error) {
		return enricher.Enrich(ctx, RequestFor(c))
	}
}

// RequestFor builds the enrichment request for a company. Thesis scoring is
// requested only when the row carries a name or description.
func RequestFor(c profile.Company) enrich.Request {
	req := enrich.Request{Website: c.Website}
	if strings.TrimSpace(c.Name) != "" || strings.TrimSpace(c.Description) != "" {
		company := c
		req.Company = &company
	}
	return req
}

func buildRow(c profile.Company, p profile.Profile, err error) Row {
	row := Row{
		ID:      c.ID,
		Name:    c.Name,
		Website: strings.TrimSpace(c.Website),
	}
	if err != nil {
		row.Status = StatusError
		row.Error = redact.Secrets(enrich.UserMessage(err))
		if kind, ok := enrich.KindOf(err); ok {
			row.ErrorKind = string(kind)
		}
		return row
	}
	row.Status = StatusOK
	row.Profile = &p
	return row
}

// plan collapses duplicate companies so each is enriched once.
type plan struct {
	pending []profile.Company
	// fanout maps a pending index to every input index it serves.
	fanout [][]int
}

func newPlan(companies []profile.Company) plan {
	var p plan
	seen := make(map[string]int, len(companies))
	for i, c := range companies {
		key := companyKey(c)
		if j, ok := seen[key]; ok {
			p.fanout[j] = append(p.fanout[j], i)
			continue
		}
		seen[key] = len(p.pending)
		p.pending = append(p.pending, c)
		p.fanout = append(p.fanout, []int{i})
	}
	return p
}

// companyKey treats rows as duplicates only when the scoring prompt would be
// identical too.
func companyKey(c profile.Company) string {
	site := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(c.Website)), "/")
	return site + "\x00" + strings.TrimSpace(c.Name) + "\x00" + strings.TrimSpace(c.Description)
}
