package attachment

import "chatview/internal/models"

var (
	imageExts    = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".svg", ".ico", ".tiff"}
	videoExts    = []string{".mp4", ".mov", ".avi", ".mkv", ".webm", ".flv", ".wmv", ".m4v", ".3gp"}
	audioExts    = []string{".mp3", ".wav", ".aac", ".ogg", ".opus", ".flac", ".m4a", ".wma"}
	documentExts = []string{".pdf", ".doc", ".docx", ".txt", ".rtf", ".odt", ".vcf"}
	archiveExts  = []string{".zip", ".rar", ".7z", ".tar", ".gz"}
	codeExts     = []string{".js", ".html", ".css", ".py", ".java", ".cpp", ".c", ".php"}
)

var extensionKinds = buildExtensionKinds()

func buildExtensionKinds() map[string]models.Kind {
	kinds := make(map[string]models.Kind)
	add := func(kind models.Kind, exts []string) {
		for _, ext := range exts {
			kinds[ext] = kind
		}
	}
	add(models.KindImage, imageExts)
	add(models.KindVideo, videoExts)
	add(models.KindFile, audioExts)
	add(models.KindFile, documentExts)
	add(models.KindFile, archiveExts)
	add(models.KindFile, codeExts)
	return kinds
}
