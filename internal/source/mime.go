package source

import (
	"mime"
	"net/http"
	"path/filepath"
)

// DetectMIME resolves a file's MIME type. A declared type wins unless it is
// empty or the generic octet-stream; then the extension is consulted, and
// finally the content is sniffed.
func DetectMIME(fileName string, data []byte, declared string) string {
	if mt := baseMIME(declared); mt != "" && mt != "application/octet-stream" {
		return mt
	}
	if ext := filepath.Ext(fileName); ext != "" {
		if mt := baseMIME(mime.TypeByExtension(ext)); mt != "" {
			return mt
		}
	}
	if len(data) > 0 {
		return baseMIME(http.DetectContentType(data))
	}
	return baseMIME(declared)
}
