package model

import "strings"

// RecordKey strips the table prefix from a "table:key" record id
func RecordKey(id string) string {
	if _, key, found := strings.Cut(id, ":"); found {
		return key
	}
	return id
}

// Key is the book id without its table, as used in URLs
func (b *Book) Key() string { return RecordKey(b.ID) }

// Key is the post id without its table, as used in URLs
func (p *Post) Key() string { return RecordKey(p.ID) }

// Key is the comment id without its table, as used in URLs
func (c *Comment) Key() string { return RecordKey(c.ID) }
