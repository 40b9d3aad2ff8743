package viewmodel

import (
	"github.com/codyseavey/goblin-bookie/internal/models"
)

// Article is a news tile on the home page
type Article struct {
	Image       string
	Title       string
	Description string
}

// Articles is the demo news content shown on the home page
var Articles = []Article{
	{
		Image:       "/static/news1.svg",
		Title:       "Weekly Update (Jul 06): Big Standard Bannings",
		Description: "This week in MTG news: Big Standard Bannings.",
	},
	{
		Image:       "/static/news2.svg",
		Title:       "Against the Odds: Jumbo Cactuar (Standard)",
		Description: "What are the odds of winning with a single attack for 10,000 with Jumbo Cactuar?",
	},
	{
		Image:       "/static/news3.svg",
		Title:       "Vintage 101: Cats in the Cradle",
		Description: "Joe Dyer dives into no changes for Vintage on the June 30 BNR!",
	},
}

// RecentCard is a recently viewed card linked from the home page
type RecentCard struct {
	UUID     string `json:"uuid"`
	Name     string `json:"name"`
	Set      string `json:"set"`
	ImageURL string `json:"imageUrl"`
}

// RecentCards converts stored card views for display
func RecentCards(views []models.CardView) []RecentCard {
	cards := make([]RecentCard, len(views))
	for i, v := range views {
		cards[i] = RecentCard{
			UUID:     v.CardUUID,
			Name:     v.Name,
			Set:      v.Set,
			ImageURL: ImageOrPlaceholder(v.ImageURL),
		}
	}
	return cards
}
