// Package responder turns device heartbeats into rendered reply messages.
//
// A reply template is the device's own return message when it has one, and
// the template store's entry otherwise. Rendering failures never reach the
// device: the error is logged and counted and the unrendered template text is
// returned instead. Every reply carries a render ID that also appears on the
// log lines written while producing it.
package responder
