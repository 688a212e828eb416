// Package health provides liveness and readiness probes for statusboard serve.
//
// Components register named checks on a Checker. Liveness always succeeds
// while the process runs; readiness runs every check concurrently, each under
// its own timeout, and reports "degraded" when any of them fails:
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("registry", func(ctx context.Context) error {
//		_, err := store.Devices(ctx)
//		return err
//	})
//	router.Get("/readyz", checker.ReadinessHandler())
package health
