package utils

// BuildMenuCacheKey keys the cached home/menu response. The menu is strictly
// per-owner, so the user id is the whole key; bump the version when the
// response shape changes.
func BuildMenuCacheKey(userID string) string {
	return "menu:v1:user=" + userID
}
