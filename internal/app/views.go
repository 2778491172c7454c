package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ihwang125/NewsToText/internal/alerts"
	"github.com/ihwang125/NewsToText/internal/models"
)

// UserSource exposes the authenticated user for display.
type UserSource interface {
	CurrentUser() *models.User
}

// HistoryAPI is the slice of the request client the history view consumes.
type HistoryAPI interface {
	AlertHistory(ctx context.Context) ([]models.HistoryEntry, error)
}

// LoginView is the unauthenticated landing screen.
type LoginView struct{}

func (LoginView) Name() string    { return ViewLogin }
func (LoginView) Protected() bool { return false }

func (LoginView) Render(_ context.Context, w io.Writer) error {
	fmt.Fprintln(w, "News to Text")
	fmt.Fprintln(w, "Please log in:  login <email> <password>")
	fmt.Fprintln(w, "New here?       register <email> <password>")
	return nil
}

// DashboardView lists the user's alerts. Rendering loads the collection
// from the server so the list is fresh on every visit.
type DashboardView struct {
	Alerts *alerts.Store
	Users  UserSource
}

func (DashboardView) Name() string    { return "dashboard" }
func (DashboardView) Protected() bool { return true }

func (v DashboardView) Render(ctx context.Context, w io.Writer) error {
	if user := v.Users.CurrentUser(); user != nil {
		fmt.Fprintf(w, "Welcome, %s\n\n", user.Email)
	}

	if err := v.Alerts.Load(ctx); err != nil {
		return err
	}

	list := v.Alerts.List()
	if len(list) == 0 {
		fmt.Fprintln(w, "No alerts yet. Create your first news alert with: create")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTOPIC\tKEYWORDS\tFREQUENCY\tSTATUS\tLAST CHECKED")
	for _, a := range list {
		status := "inactive"
		if a.Active {
			status = "active"
		}
		lastChecked := "-"
		if a.LastChecked != nil {
			lastChecked = a.LastChecked.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Topic, strings.Join(a.Keywords, ", "), a.Frequency, status, lastChecked)
	}
	return tw.Flush()
}

// HistoryView lists delivery attempts, newest as the server orders them.
type HistoryView struct {
	API HistoryAPI
}

func (HistoryView) Name() string    { return "history" }
func (HistoryView) Protected() bool { return true }

func (v HistoryView) Render(ctx context.Context, w io.Writer) error {
	history, err := v.API.AlertHistory(ctx)
	if err != nil {
		return err
	}

	if len(history) == 0 {
		fmt.Fprintln(w, "No alert history yet. Notifications will appear here once alerts start sending.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SENT\tTITLE\tSOURCE\tRESULT\tURL")
	for _, h := range history {
		result := "sent"
		if !h.Success {
			result = "failed"
			if h.ErrorMsg != "" {
				result = "failed: " + h.ErrorMsg
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			h.SentAt.Local().Format("2006-01-02 15:04"), h.NewsTitle, h.NewsSource, result, h.NewsURL)
	}
	return tw.Flush()
}
