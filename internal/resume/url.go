package resume

import (
	"net/url"
	"path"
	"strings"
)

var fileBackedExtensions = map[string]struct{}{
	".pdf":  {},
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
	".gif":  {},
}

// IsFileBackedURL 根据扩展名判断链接是否指向上传的附件（证书扫描件等）。
// 查询参数与锚点不参与判断，大小写不敏感。
func IsFileBackedURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	_, ok := fileBackedExtensions[strings.ToLower(path.Ext(p))]
	return ok
}
