// Package toast renders short-lived, dismissible status messages on a page
// without blocking the caller.
//
// A Manager is constructed once per page and handed to every widget that
// needs to post notifications. It binds lazily to the page's container region
// through a Locator; when no container exists every Show is a silent no-op.
//
//	board := toast.NewBoard()
//	m := toast.NewManager(func() toast.Container { return board })
//	m.Init()
//	m.Show("Error", "Rellena todos los campos.", toast.WithKind(toast.Warning), toast.WithDuration(4*time.Second))
//
// # Lifecycle
//
// A toast is appended to the container as soon as Show returns. When its
// duration elapses, or its close affordance is activated, the container is
// told to play the exit animation and the toast is detached ExitAnimation
// later. The first trigger wins; the other becomes a no-op and a pending
// auto-dismiss is cancelled.
//
// # Markup
//
// Message is rendered as markup without escaping. Callers must only pass
// content they control; never forward user input as a toast message.
// Titles are always escaped.
package toast
