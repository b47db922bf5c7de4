// Package clipboard copies integrity values to the clipboard on a
// best-effort basis. Copy prefers a direct clipboard write when the
// session is secure and a clipboard is reachable, and otherwise falls
// back to a document field plus a legacy copy command. The field is
// always removed, whether or not the copy worked.
package clipboard
