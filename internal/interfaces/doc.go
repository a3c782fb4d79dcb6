// Package interfaces documents the core abstractions used throughout the application.
//
// Consumers declare the narrow interface they need next to the code that uses
// it. This package only collects compile-time checks that the concrete types
// wired in internal/entrypoint satisfy them.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - WorksheetStore, CourseStore, EBookStore, FolderStore: owner and public
//     document access (internal/http/stores.go)
//   - RenderJobStore, rendering.JobStore: render job bookkeeping
//   - settingsstore.Repository: key/value settings with encrypted secrets
//   - auth.UserRepository: local user accounts
//
// ## Service Interfaces
//
//   - PDFRenderer: request, run and serve worksheet PDFs (internal/rendering)
//   - Translator: push, pull and status of course translations (internal/translation)
//   - DocumentAuditor, AuditEventReader: activity log (internal/audit)
//   - SettingsStore, SyncScheduler: admin settings and the translation sync schedule
//
// ## External Service Interfaces
//
//   - translation.Source: the i18nexus project API (internal/i18nexus)
//   - pdf.Renderer: headless Chrome printing (internal/pdf)
//   - storage.Client, storage.Signer: blob storage backends (local, MinIO, GCS)
//   - cache.RenderCache: render deduplication (Redis or no-op)
//
// ## Background Work Interfaces
//
//   - TaskQueue, scheduler.Enqueuer: the backlite task client (internal/tasks)
//   - tasks.JobRunner, tasks.Translator: what queued tasks execute
//
// # Adding a New Storage Backend
//
//  1. Create a sub-package of internal/storage/providers implementing
//     storage.Client, and storage.Signer when the backend can presign URLs.
//
//  2. Add a provider constant to config.Storage and a case to providers.New.
//
//  3. Add compile-time checks to checks.go:
//
//     var _ storage.Client = (*s3.Client)(nil)
//
// # Adding a New Document Kind
//
//  1. Add the entity to internal/entities and to database.Migrate.
//
//  2. Create a repository under internal/database/<kind>/ using OwnerScope,
//     FolderScope and UniqueSlug.
//
//  3. Describe its settings in internal/docsettings and its normalization in
//     internal/documents.
//
//  4. Declare the store interface in internal/http/stores.go, add a controller
//     and register routes in router.go.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
