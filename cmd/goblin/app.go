package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codyseavey/goblin-bookie/internal/models"
	"github.com/codyseavey/goblin-bookie/internal/search"
	"github.com/codyseavey/goblin-bookie/internal/services"
	"github.com/codyseavey/goblin-bookie/internal/viewmodel"
)

type cardGetter interface {
	GetCard(ctx context.Context, uuid string) (*services.DetailResult, error)
}

type sampleFetcher interface {
	FetchSampleCards(ctx context.Context) ([]models.SampleCard, error)
}

// App runs REPL commands against a search session and the card service
type App struct {
	session *search.Session
	cards   cardGetter
	samples sampleFetcher
}

func NewApp(session *search.Session, cards cardGetter, samples sampleFetcher) *App {
	return &App{session: session, cards: cards, samples: samples}
}

func (a *App) Search(ctx context.Context, query string) error {
	if !a.session.Search(query) {
		printlnFn("Usage: search <card name>")
		return nil
	}
	return a.showResults(ctx)
}

func (a *App) Next(ctx context.Context) error {
	if !a.session.Next() {
		printlnFn("No next page.")
		return nil
	}
	return a.showResults(ctx)
}

func (a *App) Prev(ctx context.Context) error {
	if !a.session.Prev() {
		printlnFn("Already on the first page.")
		return nil
	}
	return a.showResults(ctx)
}

func (a *App) showResults(ctx context.Context) error {
	if err := a.session.Await(ctx); err != nil {
		return err
	}
	state := a.session.Snapshot()
	page := viewmodel.NewSearchPage(state.Query, state.Page, state.Cards, state.Err)

	if page.Error != "" {
		printlnFn(page.Error)
		return state.Err
	}
	if page.NoResults {
		printlnFn("No results found.")
		return nil
	}

	for _, r := range page.Results {
		printlnFn(fmt.Sprintf("%s  (%s)  [%s]", r.Name, r.Set, r.UUID))
		for _, line := range r.Lines() {
			printlnFn("    " + line)
		}
	}

	nav := []string{fmt.Sprintf("Page %d", page.Page)}
	if !page.PrevDisabled {
		nav = append(nav, "prev")
	}
	if !page.NextDisabled {
		nav = append(nav, "next")
	}
	printlnFn(strings.Join(nav, " | "))
	return nil
}

func (a *App) Card(ctx context.Context, uuid string) error {
	result, err := a.cards.GetCard(ctx, uuid)
	if errors.Is(err, services.ErrCardNotFound) {
		printlnFn(viewmodel.CardNotFoundMessage)
		return nil
	}
	if err != nil {
		printlnFn(viewmodel.ServiceUnavailableMessage)
		return err
	}

	view := viewmodel.NewCardDetailView(result.Card)
	printlnFn(fmt.Sprintf("%s  (%s)", view.Name, view.Set))
	if result.Stale {
		printlnFn("  (stored prices from " + result.FetchedAt.Format("Jan 2, 2006 15:04 MST") + ")")
	}
	if view.Language != "" {
		printlnFn("  Language: " + view.Language)
	}
	if view.Finishes != "" {
		printlnFn(fmt.Sprintf("  %s: %s", view.FinishLabel, view.Finishes))
	}
	for _, t := range view.Tiles {
		printlnFn(fmt.Sprintf("  %s %-20s %s", t.Icon, t.Label, t.Value))
	}
	if len(view.Vendors) > 0 {
		printlnFn("  Vendors:")
		for _, v := range view.Vendors {
			line := fmt.Sprintf("    %-20s retail %-10s buylist %-10s", v.Vendor, v.Retail, v.Buylist)
			if v.HasPurchaseLink() {
				line += " " + v.PurchaseURL
			}
			printlnFn(strings.TrimRight(line, " "))
		}
	}
	if !view.Chart.Empty {
		printlnFn(fmt.Sprintf("  History: %d points, %s to %s, range %s - %s",
			len(view.Series), view.Chart.First, view.Chart.Last, view.Chart.MinText, view.Chart.MaxText))
	}
	return nil
}

func (a *App) Samples(ctx context.Context) error {
	cards, err := a.samples.FetchSampleCards(ctx)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		printlnFn("No sample cards.")
		return nil
	}
	for _, c := range cards {
		printlnFn(fmt.Sprintf("%s  (%s)  tcgplayer #%s", c.Name, c.Set, c.TCGPlayerID))
	}
	return nil
}
