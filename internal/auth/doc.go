// Package auth provides authentication and authorization for the editor API.
//
// It supports two authentication modes:
//   - "none": no login, every request acts as DefaultUserID (single author installs)
//   - "local": local user database with cookie sessions stored in SQLite
//
// # Configuration
//
//	AUTH_MODE=none|local
//	AUTH_SESSION_SECRET=<hex>        # CSRF key, generated when empty
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_BCRYPT_COST=12
//	AUTH_SECURE_COOKIES=true
//	AUTH_ADMIN_USER_IDS=<id>,<id>    # always treated as admins
//	AUTH_MAX_LOGIN_ATTEMPTS=5
//
// # Usage
//
//	authService := auth.NewService(users.NewRepository(db), cfg.Auth)
//	sessions, _ := auth.NewSessionManager(sqlDB, cfg.Auth)
//	router.Use(sessions.SessionLoadSave())
//	router.Use(auth.NewMiddleware(authService, sessions, cfg.Auth).Handler())
//
// Handlers read the acting user with auth.GetUserID(c). Anonymous requests
// to public routes get "".
package auth
