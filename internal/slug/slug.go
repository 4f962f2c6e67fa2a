package slug

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/inkpost/internal/constants"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var validPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Valid 判断 slug 是否为 URL 安全格式
func Valid(value string) bool {
	if value == "" || len(value) > constants.PostSlugMaxLength {
		return false
	}
	return validPattern.MatchString(value)
}

// Make 由标题生成 slug：去除重音、转小写，非字母数字折叠为连字符
func Make(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	pendingDash := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}

	out := b.String()
	if len(out) > constants.PostSlugMaxLength {
		out = strings.TrimRight(out[:constants.PostSlugMaxLength], "-")
	}
	return out
}
