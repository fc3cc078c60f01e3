// SPDX-License-Identifier: MPL-2.0

// Package lifecycle creates, inspects, stops and removes containers by
// driving the Docker CLI through a transport. A Manager is bound to one
// transport at construction and owns an in-memory Registry of every
// container it created.
package lifecycle
