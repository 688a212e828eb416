// Package git keeps the template file in a Git repository.
//
// With templates.git.enabled, statusboard clones the configured branch into
// templates.git.local_path and reads templates.git.file from the checkout.
// "serve" then polls the remote; when a pulled commit touches the template
// file the template store is reloaded. A template file that fails to lint is
// rejected by the store, which keeps serving the previous set until a later
// commit fixes it.
//
//	repo, err := git.NewRepository(cfg.Templates.Git)
//	if err != nil {
//		return err
//	}
//	if err := repo.Clone(ctx); err != nil {
//		return err
//	}
//	poller := git.NewPoller(repo, cfg.Templates.Git.PollInterval, store.Load, logger)
//	go poller.Run(ctx)
//
// Authentication is "none" for public or local repositories, "token" for
// HTTPS personal access tokens, or "ssh" for a private key file.
package git
