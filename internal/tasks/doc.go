// Package tasks loads the listening dashboard from the Web API with progress reporting.
//
// # Dashboard Load
//
// [DashboardLoader.Load] runs in two stages:
//
//  1. Profile, top artists and top tracks are fetched concurrently under an errgroup. The join is all-or-nothing:
//     the first failure cancels the siblings and fails the load.
//  2. Recommendations are fetched once the first stage succeeds, seeded by [services.SelectSeeds].
//     No top tracks means no recommendations call and an empty list. A failed recommendations call
//     degrades to an empty list unless it is an authorization failure.
//
// # Session Coupling
//
// When a [Binder] is configured every load runs under [Binder.Bind], so invalidating the session aborts
// in-flight requests. Authorization failures (see [services.IsAuthError]) invalidate the session.
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values over an optional channel. Sends never block: a full channel drops the update.
//
// # Bulk Export
//
// [DashboardLoader.BulkExport] loads several time ranges with a rate-limited worker pool and writes one export per
// range through the formatter package, followed by a JSON manifest.
package tasks
