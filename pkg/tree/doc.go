// Package tree defines the container tree at the heart of the window
// manager. Every display, workspace, split container and window is a
// Con; the tree owns three orderings per parent (structural order,
// focus order and, for workspaces, a floating list) which stay
// consistent across every exported mutation.
package tree
