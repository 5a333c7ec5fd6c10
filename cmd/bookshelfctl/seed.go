package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

type seedBook struct {
	title, author, genre string
	year, pages          int
}

var seedCatalog = []seedBook{
	{"Dune", "Frank Herbert", "Sci-Fi", 1965, 412},
	{"The Left Hand of Darkness", "Ursula K. Le Guin", "Sci-Fi", 1969, 304},
	{"Emma", "Jane Austen", "Classic", 1815, 474},
	{"Middlemarch", "George Eliot", "Classic", 1871, 880},
	{"The Name of the Rose", "Umberto Eco", "Mystery", 1980, 536},
	{"Gone Girl", "Gillian Flynn", "Thriller", 2012, 432},
	{"Sapiens", "Yuval Noah Harari", "History", 2011, 443},
	{"Мастер и Маргарита", "Михаил Булгаков", "Classic", 1967, 480},
	{"Piranesi", "Susanna Clarke", "Fantasy", 2020, 272},
	{"The Remains of the Day", "Kazuo Ishiguro", "Literary", 1989, 258},
	{"Project Hail Mary", "Andy Weir", "Sci-Fi", 2021, 496},
	{"A Wizard of Earthsea", "Ursula K. Le Guin", "Fantasy", 1968, 183},
}

var seedStatuses = []domain.Status{
	domain.StatusWantToRead,
	domain.StatusReading,
	domain.StatusRead,
	domain.StatusRead,
	domain.StatusFavorite,
	domain.StatusAbandoned,
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var (
		email string
		count int
		seed  uint64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill a user's library with sample books",
		Long: `Fill a user's library with sample books in every status, with
ratings and reading dates spread over the past year, so statistics,
achievements and goals have data to show.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 || count > 1000 {
				return fmt.Errorf("count must be between 1 and 1000")
			}

			return opts.withContainer(cmd, func(i do.Injector) error {
				authService := do.MustInvoke[*service.AuthService](i)
				books := do.MustInvoke[*service.BookService](i)
				_ = do.MustInvoke[*service.SearchService](i)

				userID, err := authService.UserIDByEmail(cmd.Context(), email)
				if err != nil {
					return err
				}

				rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
				today := domain.Today(time.Now())

				for n := range count {
					req := sampleBook(rng, today, n)
					if _, err := books.CreateBook(cmd.Context(), userID, req); err != nil {
						return fmt.Errorf("create %q: %w", req.Title, err)
					}
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Created %d sample books\n", count)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().IntVar(&count, "count", 24, "Number of books to create")
	cmd.Flags().Uint64Var(&seed, "seed", uint64(time.Now().UnixNano()), "Random seed")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// sampleBook picks a catalog entry and a plausible reading history for it.
func sampleBook(rng *rand.Rand, today time.Time, n int) service.CreateBookRequest {
	base := seedCatalog[n%len(seedCatalog)]
	year, pages := base.year, base.pages

	req := service.CreateBookRequest{
		Title:  base.title,
		Author: base.author,
		Genre:  base.genre,
		Year:   &year,
		Pages:  &pages,
		Status: seedStatuses[rng.IntN(len(seedStatuses))],
	}
	if n >= len(seedCatalog) {
		req.Title = fmt.Sprintf("%s (copy %d)", base.title, n/len(seedCatalog)+1)
	}

	start := today.AddDate(0, 0, -rng.IntN(365))
	switch req.Status {
	case domain.StatusReading:
		req.StartDate = start.Format(time.DateOnly)
		req.Progress = 1 + rng.IntN(99)
	case domain.StatusRead, domain.StatusFavorite:
		end := start.AddDate(0, 0, 1+rng.IntN(30))
		if end.After(today) {
			end = today
		}
		req.StartDate = start.Format(time.DateOnly)
		req.EndDate = end.Format(time.DateOnly)
		req.Rating = 1 + rng.IntN(5)
		req.Recommend = req.Rating >= 4
	case domain.StatusAbandoned:
		req.StartDate = start.Format(time.DateOnly)
		req.Progress = rng.IntN(60)
	}

	return req
}
