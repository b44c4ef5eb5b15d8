// Package form validates registration submissions and keeps the accepted
// ones in memory until they have been viewed.
package form
