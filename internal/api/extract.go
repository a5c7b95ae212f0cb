package api

import (
	"context"
	"io"
	"net/url"
	"time"

	apperrors "github.com/panelkit/dealerpanel/internal/platform/errors"
)

// ExtractGateway reads the dealer's account statement ("ekstre").
type ExtractGateway struct {
	client *Client
}

// Extract returns the account-statement resource gateway.
func (c *Client) Extract() *ExtractGateway {
	return &ExtractGateway{client: c}
}

// dateLayout is the backend's query-parameter date format.
const dateLayout = "2006-01-02"

// StatementQuery narrows a statement to a date range. Zero values leave
// the bound open.
type StatementQuery struct {
	Start time.Time
	End   time.Time
}

func (q StatementQuery) values() url.Values {
	values := url.Values{}
	if !q.Start.IsZero() {
		values.Set("start", q.Start.Format(dateLayout))
	}
	if !q.End.IsZero() {
		values.Set("end", q.End.Format(dateLayout))
	}
	return values
}

// StatementEntry is one ledger row of the account statement.
type StatementEntry struct {
	Date        string  `json:"tarih"`
	DocumentNo  string  `json:"evrakno"`
	Description string  `json:"aciklama"`
	Debit       float64 `json:"borc"`
	Credit      float64 `json:"alacak"`
	Balance     float64 `json:"bakiye"`
}

// Statement is the dealer's account statement for a period.
type Statement struct {
	Entries     []StatementEntry `json:"entries"`
	TotalDebit  float64          `json:"toplamBorc"`
	TotalCredit float64          `json:"toplamAlacak"`
	Balance     float64          `json:"bakiye"`
}

// Statement returns the signed-in dealer's statement.
func (g *ExtractGateway) Statement(ctx context.Context, query StatementQuery) (Statement, error) {
	var statement Statement
	if err := g.client.get(ctx, "/extract", query.values(), &statement); err != nil {
		return Statement{}, apperrors.Wrap(apperrors.CodeExtractUnavailable, "get statement", err)
	}
	return statement, nil
}

// StatementForAccount returns the statement of one current account when
// the dealer holds several.
func (g *ExtractGateway) StatementForAccount(ctx context.Context, accountNo string, query StatementQuery) (Statement, error) {
	var statement Statement
	path := "/extract/" + url.PathEscape(accountNo)
	if err := g.client.get(ctx, path, query.values(), &statement); err != nil {
		return Statement{}, apperrors.Wrap(apperrors.CodeExtractUnavailable, "get statement for "+accountNo, err)
	}
	return statement, nil
}

// ExportExcel streams the backend-rendered Excel export of the
// statement into w.
func (g *ExtractGateway) ExportExcel(ctx context.Context, query StatementQuery, w io.Writer) error {
	if err := g.client.download(ctx, "/excel/extract", query.values(), w); err != nil {
		return apperrors.Wrap(apperrors.CodeExtractUnavailable, "export statement", err)
	}
	return nil
}
