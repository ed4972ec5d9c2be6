// Package http exposes the asar services as JSON endpoints on a chi router.
//
// Public routes mount under /api/v1:
//   - Pages: /pages/{slug}
//   - Articles: /articles, /articles/search, /articles/{id}, /articles/{id}/share
//   - Categories: /categories
//   - Comments: /comments, /comments/article/{articleId}, /comments/{id}/like, /comments/{id}/status
//   - Likes and bookmarks: /likes, /likes/{id}, /likes/{id}/status, /bookmarks, /bookmarks/{id}
//   - Remote config: /remote_config/splash
//   - Prices: /prices
//
// Admin routes mount under /api/v1/admin and require the admin role
// (category reads also accept editor). Besides the CRUD routes, admins can
// trigger POST /admin/prices/sync and POST /admin/cache/invalidate.
//
// NewRouter adds /healthz, /metrics, CORS and request logging around the API.
//
// Authentication happens upstream. The gateway forwards the caller as
// X-User-ID and X-User-Role headers; see ActorMiddleware.
//
// Every response uses the envelope {"status": <code>, "data": ...} or
// {"status": <code>, "message": "..."}.
package http
