package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"library-api/auth"
	"library-api/config"
	"library-api/models"
	"library-api/store"
)

const (
	librarianEmailFlag    = "librarian-email"
	librarianPasswordFlag = "librarian-password"
)

var seedFlags = map[string]cobraflags.Flag{
	librarianEmailFlag: &cobraflags.StringFlag{
		Name:  librarianEmailFlag,
		Value: "librarian@library.local",
		Usage: "Email of the librarian account to create",
	},
	librarianPasswordFlag: &cobraflags.StringFlag{
		Name:  librarianPasswordFlag,
		Value: "",
		Usage: "Password of the librarian account (required)",
	},
}

// sampleBooks is the starter catalogue.
var sampleBooks = []models.Book{
	{Title: "Pride and Prejudice", Author: "Jane Austen", Category: "classics", TotalCopies: 3, AvailableCopies: 3},
	{Title: "Emma", Author: "Jane Austen", Category: "classics", TotalCopies: 2, AvailableCopies: 2},
	{Title: "Dune", Author: "Frank Herbert", Category: "science-fiction", TotalCopies: 4, AvailableCopies: 4},
	{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", Category: "science-fiction", TotalCopies: 2, AvailableCopies: 2},
	{Title: "Les Misérables", Author: "Victor Hugo", Category: "classics", TotalCopies: 1, AvailableCopies: 1},
}

func NewSeedCommand() *cobra.Command {
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a librarian account and a starter catalogue",
		Long: `Create a librarian account and, when the catalogue is empty, a handful
of sample books. Librarians cannot be created through the HTTP API.`,
		RunE: seedCommand,
	}
	cobraflags.RegisterMap(seedCmd, seedFlags)
	return seedCmd
}

func seedCommand(cmd *cobra.Command, _ []string) error {
	email := seedFlags[librarianEmailFlag].GetString()
	password := seedFlags[librarianPasswordFlag].GetString()
	if password == "" {
		return fmt.Errorf("--%s is required", librarianPasswordFlag)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := config.Migrate(a.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return seed(cmd.Context(), a.identity, a.store, a.log, email, password)
}

func seed(ctx context.Context, identity *auth.Provider, s *store.Store, log *zap.Logger, email, password string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	userID, err := identity.SignUp(ctx, email, password)
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		log.Info("librarian already exists", zap.String("email", email))
	case err != nil:
		return fmt.Errorf("create librarian identity: %w", err)
	default:
		librarian := &models.User{
			ID:        userID,
			Email:     email,
			Role:      models.RoleLibrarian,
			FirstName: "Head",
			LastName:  "Librarian",
			Language:  "en",
		}
		if err := s.CreateUser(ctx, librarian); err != nil {
			return fmt.Errorf("create librarian profile: %w", err)
		}
		log.Info("librarian created", zap.String("email", email), zap.String("user_id", userID))
	}

	existing, err := s.ListBooks(ctx, store.BookFilter{})
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}
	if len(existing) > 0 {
		log.Info("catalogue not empty, skipping sample books", zap.Int("books", len(existing)))
		return nil
	}
	for _, b := range sampleBooks {
		book := b
		if err := s.CreateBook(ctx, &book); err != nil {
			return fmt.Errorf("create book %q: %w", book.Title, err)
		}
	}
	log.Info("sample books created", zap.Int("books", len(sampleBooks)))
	return nil
}
