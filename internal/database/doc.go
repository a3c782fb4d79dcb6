// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, shared scopes
//	├── worksheets/      # Worksheet variants (worksheet, cards, flashcards, covers, grammar tables)
//	├── courses/         # Courses and their translation bundles
//	├── ebooks/          # E-books
//	├── folders/         # Folder tree with cascading delete
//	├── renderjobs/      # PDF render job tracking
//	├── audit/           # Activity log
//	├── settings/        # Application settings
//	└── users/           # User management
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./studio.db", log)
//
//	worksheetsRepo := worksheets.NewRepository(db.DB)
//	ws, err := worksheetsRepo.GetForOwner(id, userID)
//
// Repositories return database.ErrNotFound when nothing matches, so callers
// can map it onto their own not-found result without importing gorm.
//
// # Partial Updates
//
// Update methods take a Patch listing only the columns the caller supplied.
// Columns absent from the patch are never written.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Register the entity in Migrate
//  5. Add compile-time interface checks where the repository backs a store interface
package database
