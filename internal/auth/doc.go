// Package auth derives and checks crypt(3) password hashes as stored in the
// shadow database.
//
// Hashes are produced with sha512-crypt by default. Verification supports
// sha512/sha256/md5-crypt in process; anything else (yescrypt on recent
// Ubuntu) is checked by running su(1) behind a PTY.
package auth
