package database

import (
	"fmt"
	"log/slog"
)

func strptr(s string) *string { return &s }

// seedCompanies is the bundled employer roster.
var seedCompanies = []Company{
	{ID: "shopify", Name: "Shopify", Ticker: strptr("SHOP"), Industry: "E-Commerce", Category: "public"},
	{ID: "stripe", Name: "Stripe", Industry: "Fintech", Category: "startup"},
	{ID: "vercel", Name: "Vercel", Industry: "Developer Tools", Category: "startup"},
	{ID: "hashicorp", Name: "HashiCorp", Ticker: strptr("HCP"), Industry: "Infrastructure", Category: "public"},
	{ID: "comma-ai", Name: "comma.ai", Industry: "Autonomous Vehicles", Category: "startup"},
	{ID: "independent-karpathy", Name: "Independent", Industry: "AI/ML", Category: "startup"},
	{ID: "independent-levels", Name: "Independent", Industry: "Indie Hacker", Category: "startup"},
	{ID: "replit", Name: "Replit", Industry: "Developer Tools", Category: "startup"},
	{ID: "37signals", Name: "37signals", Industry: "Software", Category: "startup"},
	{ID: "dagger", Name: "Dagger", Industry: "Developer Tools", Category: "startup"},
	{ID: "independent-tpw", Name: "Independent", Industry: "Developer Tools", Category: "startup"},
	{ID: "independent-friedman", Name: "Independent", Industry: "Technology", Category: "startup"},
	{ID: "apple", Name: "Apple", Ticker: strptr("AAPL"), Industry: "Consumer Electronics", Category: "public"},
	{ID: "microsoft", Name: "Microsoft", Ticker: strptr("MSFT"), Industry: "Software", Category: "public"},
	{ID: "amazon", Name: "Amazon", Ticker: strptr("AMZN"), Industry: "E-Commerce/Cloud", Category: "public"},
	{ID: "google", Name: "Google (Alphabet)", Ticker: strptr("GOOGL"), Industry: "Technology", Category: "public"},
	{ID: "nvidia", Name: "NVIDIA", Ticker: strptr("NVDA"), Industry: "Semiconductors", Category: "public"},
	{ID: "meta", Name: "Meta", Ticker: strptr("META"), Industry: "Social Media", Category: "public"},
}

// seedExecutives is the bundled roster of tracked people. Executives
// without a GitHub handle stay on the board with a score of zero.
var seedExecutives = []Executive{
	{ID: "tobi-lutke", Name: "Tobi Lutke", Title: "CEO", CompanyID: "shopify", GithubUsername: strptr("tobi"), Category: "c-suite"},
	{ID: "patrick-collison", Name: "Patrick Collison", Title: "CEO", CompanyID: "stripe", GithubUsername: strptr("patrickc"), Category: "c-suite"},
	{ID: "guillermo-rauch", Name: "Guillermo Rauch", Title: "CEO", CompanyID: "vercel", GithubUsername: strptr("rauchg"), Category: "founder"},
	{ID: "mitchell-hashimoto", Name: "Mitchell Hashimoto", Title: "Co-Founder", CompanyID: "hashicorp", GithubUsername: strptr("mitchellh"), Category: "founder"},
	{ID: "george-hotz", Name: "George Hotz", Title: "Founder", CompanyID: "comma-ai", GithubUsername: strptr("geohot"), Category: "founder"},
	{ID: "andrej-karpathy", Name: "Andrej Karpathy", Title: "AI Researcher", CompanyID: "independent-karpathy", GithubUsername: strptr("karpathy"), Category: "founder"},
	{ID: "pieter-levels", Name: "Pieter Levels", Title: "Founder", CompanyID: "independent-levels", GithubUsername: strptr("levelsio"), Category: "founder"},
	{ID: "amjad-masad", Name: "Amjad Masad", Title: "CEO", CompanyID: "replit", GithubUsername: strptr("amasad"), Category: "founder"},
	{ID: "dhh", Name: "David Heinemeier Hansson", Title: "CTO", CompanyID: "37signals", GithubUsername: strptr("dhh"), Category: "founder"},
	{ID: "solomon-hykes", Name: "Solomon Hykes", Title: "CEO", CompanyID: "dagger", GithubUsername: strptr("shykes"), Category: "founder"},
	{ID: "tom-preston-werner", Name: "Tom Preston-Werner", Title: "Co-Founder", CompanyID: "independent-tpw", GithubUsername: strptr("mojombo"), Category: "founder"},
	{ID: "nat-friedman", Name: "Nat Friedman", Title: "Investor & Builder", CompanyID: "independent-friedman", GithubUsername: strptr("nat"), Category: "founder"},
	{ID: "tim-cook", Name: "Tim Cook", Title: "CEO", CompanyID: "apple", Category: "c-suite"},
	{ID: "satya-nadella", Name: "Satya Nadella", Title: "CEO", CompanyID: "microsoft", Category: "c-suite"},
	{ID: "andy-jassy", Name: "Andy Jassy", Title: "CEO", CompanyID: "amazon", Category: "c-suite"},
	{ID: "sundar-pichai", Name: "Sundar Pichai", Title: "CEO", CompanyID: "google", Category: "c-suite"},
	{ID: "jensen-huang", Name: "Jensen Huang", Title: "CEO", CompanyID: "nvidia", Category: "c-suite"},
	{ID: "mark-zuckerberg", Name: "Mark Zuckerberg", Title: "CEO", CompanyID: "meta", Category: "c-suite"},
}

// Seed upserts the bundled roster. Identity fields are refreshed on
// every boot; scores and sync state are preserved.
func (r *Repository) Seed() error {
	for _, c := range seedCompanies {
		if err := r.UpsertCompany(c); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	for _, e := range seedExecutives {
		if err := r.UpsertExecutive(e); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	slog.Info("Roster seeded", "companies", len(seedCompanies), "executives", len(seedExecutives))

	return nil
}
