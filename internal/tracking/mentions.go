package tracking

import (
	"regexp"
	"time"

	"issue-tracker-api/internal/cache"
	"issue-tracker-api/internal/models"

	"gorm.io/gorm"
)

// Mention tokens look like @[Display Name]; letters, digits,
// underscores and spaces are allowed inside the brackets.
var mentionPattern = regexp.MustCompile(`@\[([a-zA-Z0-9_ ]+)\]`)

// userLookupTTL bounds how long name lookups are served from cache.
const userLookupTTL = time.Minute

// usersByName caches display-name lookups across comments. Names are
// not unique, so a hit carries every matching user.
var usersByName = cache.NewSimpleCache[string, []models.PublicUser](cache.Options{ConcurrencySafe: true})

// ResetMentionCache drops all cached name lookups.
func ResetMentionCache() {
	usersByName.Clear()
}

// ExtractMentionNames returns the distinct display names mentioned in
// the content, in first-appearance order.
func ExtractMentionNames(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// ResolveMentions resolves the mention tokens in a comment to user
// records by exact display-name match. The author is excluded, and a
// user appears at most once no matter how often they were mentioned.
func ResolveMentions(db *gorm.DB, content string, authorID uint) ([]models.PublicUser, error) {
	names := ExtractMentionNames(content)
	if len(names) == 0 {
		return nil, nil
	}

	seen := make(map[uint]struct{})
	resolved := make([]models.PublicUser, 0, len(names))
	for _, name := range names {
		users, ok := usersByName.Get(name)
		if !ok {
			var rows []models.User
			if err := db.Where("name = ?", name).Find(&rows).Error; err != nil {
				return nil, err
			}
			users = make([]models.PublicUser, 0, len(rows))
			for _, u := range rows {
				users = append(users, u.Public())
			}
			usersByName.Set(name, users, userLookupTTL)
		}
		for _, u := range users {
			if u.ID == authorID {
				continue
			}
			if _, ok := seen[u.ID]; ok {
				continue
			}
			seen[u.ID] = struct{}{}
			resolved = append(resolved, u)
		}
	}
	return resolved, nil
}
