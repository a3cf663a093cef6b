package repository

import (
	"fmt"
	"strings"
)

// SortOrder is an explicit ordering direction
type SortOrder string

const (
	OrderNone SortOrder = ""
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ParseSortOrder accepts "", "asc" or "desc" in any case
func ParseSortOrder(s string) (SortOrder, bool) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case OrderNone, OrderAsc, OrderDesc:
		return o, true
	default:
		return OrderNone, false
	}
}

func (o SortOrder) sql() string {
	if o == OrderAsc {
		return "ASC"
	}
	return "DESC"
}

// UserSortField is a user column clients may sort by
type UserSortField string

const (
	UserSortNone      UserSortField = ""
	UserSortCreatedAt UserSortField = "createdAt"
	UserSortUpdatedAt UserSortField = "updatedAt"
	UserSortName      UserSortField = "name"
	UserSortEmail     UserSortField = "email"
)

var userSortColumns = map[UserSortField]string{
	UserSortCreatedAt: "created_at",
	UserSortUpdatedAt: "updated_at",
	UserSortName:      "name",
	UserSortEmail:     "email",
}

// ParseUserSort validates a sort field against the allow-list
func ParseUserSort(s string) (UserSortField, bool) {
	f := UserSortField(strings.TrimSpace(s))
	if f == UserSortNone {
		return f, true
	}
	_, ok := userSortColumns[f]
	return f, ok
}

// PostSortField is a post column clients may sort by
type PostSortField string

const (
	PostSortNone      PostSortField = ""
	PostSortCreatedAt PostSortField = "createdAt"
	PostSortUpdatedAt PostSortField = "updatedAt"
	PostSortContent   PostSortField = "content"
)

var postSortColumns = map[PostSortField]string{
	PostSortCreatedAt: "p.created_at",
	PostSortUpdatedAt: "p.updated_at",
	PostSortContent:   "p.content",
}

// ParsePostSort validates a sort field against the allow-list
func ParsePostSort(s string) (PostSortField, bool) {
	f := PostSortField(strings.TrimSpace(s))
	if f == PostSortNone {
		return f, true
	}
	_, ok := postSortColumns[f]
	return f, ok
}

// UserFilter selects one page of users
type UserFilter struct {
	Search    string
	Sort      UserSortField // ordered DESC
	NameOrder SortOrder     // alphabetical order by name
	Limit     int
	Offset    int
}

// PostFilter selects one page of posts
type PostFilter struct {
	Search   string
	AuthorID string
	Sort     PostSortField // ordered DESC
	Limit    int
	Offset   int
}

// escapeLike makes LIKE metacharacters in s match literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func containsPattern(s string) string {
	return "%" + escapeLike(s) + "%"
}

// buildUserWhere returns the WHERE clause (possibly empty) and its args
func buildUserWhere(f *UserFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if f != nil && f.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", argIndex, argIndex))
		args = append(args, containsPattern(f.Search))
		argIndex++
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// buildUserOrderBy puts the sort field first, then the name order,
// and always ends on id so pages are stable.
func buildUserOrderBy(f *UserFilter) string {
	var keys []string
	if f != nil {
		if col, ok := userSortColumns[f.Sort]; ok {
			keys = append(keys, col+" DESC")
		}
		if f.NameOrder != OrderNone && f.Sort != UserSortName {
			keys = append(keys, "name "+f.NameOrder.sql())
		}
	}
	if len(keys) == 0 {
		keys = append(keys, "created_at DESC")
	}
	keys = append(keys, "id DESC")
	return "ORDER BY " + strings.Join(keys, ", ")
}

// buildPostWhere returns the WHERE clause (possibly empty) and its args
func buildPostWhere(f *PostFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if f != nil {
		if f.AuthorID != "" {
			conditions = append(conditions, fmt.Sprintf("p.author_id = $%d", argIndex))
			args = append(args, f.AuthorID)
			argIndex++
		}
		if f.Search != "" {
			conditions = append(conditions, fmt.Sprintf("p.content ILIKE $%d", argIndex))
			args = append(args, containsPattern(f.Search))
			argIndex++
		}
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func buildPostOrderBy(f *PostFilter) string {
	if f != nil {
		if col, ok := postSortColumns[f.Sort]; ok {
			return "ORDER BY " + col + " DESC, p.id DESC"
		}
	}
	return "ORDER BY p.created_at DESC, p.id DESC"
}
