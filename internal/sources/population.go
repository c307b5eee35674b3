package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/Holy623/psa-pop-tracker/internal/models"
)

const (
	psaPopURL = "https://www.psacard.com/pop?q=%s"
	cgcPopURL = "https://www.cgccards.com/population/?query=%s"
	sgcPopURL = "https://sgccard.com/PopulationReport.aspx"
)

// popScraper is the shared shape of the three population report scrapers.
// Each authority's report is a set of HTML tables; only the column positions
// of the grade and count cells differ.
type popScraper struct {
	authority models.Authority
	client    *resty.Client
	limiter   *rate.Limiter
	buildURL  func(query string) string
	gradeCol  int
	countCol  int
	minCols   int
}

func (s *popScraper) Authority() models.Authority { return s.authority }

// Query scrapes the authority's population report and returns raw
// grade -> count-text cells. Row validity and count parsing are left to the
// normalizer; this only walks the tables.
func (s *popScraper) Query(ctx context.Context, query string) (map[string]string, error) {
	doc, err := fetchDocument(ctx, s.client, s.limiter, s.buildURL(query))
	if err != nil {
		return nil, err
	}

	grades := make(map[string]string)
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < s.minCols {
			return
		}
		grade := strings.TrimSpace(cols.Eq(s.gradeCol).Text())
		count := strings.TrimSpace(cols.Eq(s.countCol).Text())
		if grade == "" || count == "" {
			return
		}
		grades[grade] = count
	})
	return grades, nil
}

// NewPSASource scrapes the PSA population report. PSA's result rows carry a
// leading description cell, so grade and count sit in columns 1 and 2.
func NewPSASource(client *resty.Client, limiter *rate.Limiter) PopulationSource {
	return &popScraper{
		authority: models.AuthorityPSA,
		client:    client,
		limiter:   limiter,
		buildURL: func(query string) string {
			return fmt.Sprintf(psaPopURL, url.QueryEscape(query))
		},
		gradeCol: 1,
		countCol: 2,
		minCols:  3,
	}
}

// NewCGCSource scrapes the CGC Cards population report.
func NewCGCSource(client *resty.Client, limiter *rate.Limiter) PopulationSource {
	return &popScraper{
		authority: models.AuthorityCGC,
		client:    client,
		limiter:   limiter,
		buildURL: func(query string) string {
			return fmt.Sprintf(cgcPopURL, strings.ReplaceAll(query, " ", "+"))
		},
		gradeCol: 0,
		countCol: 1,
		minCols:  2,
	}
}

// NewSGCSource scrapes the SGC population report. SGC has no query
// parameter; the report page is fetched as-is.
func NewSGCSource(client *resty.Client, limiter *rate.Limiter) PopulationSource {
	return &popScraper{
		authority: models.AuthoritySGC,
		client:    client,
		limiter:   limiter,
		buildURL: func(string) string {
			return sgcPopURL
		},
		gradeCol: 0,
		countCol: 1,
		minCols:  2,
	}
}
