// Package hostfs provides safe access helpers for the host account files.
//
// When the tool runs inside a container the host filesystem is bind-mounted
// under a root directory (for example /host); Root maps absolute host paths
// into that mount. On a bare host the root is "/".
//
// Writes go through WriteFileAtomic so an account file is never observed
// half rewritten.
package hostfs
