package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// CLI level messages (info)
		"Extracting %s to %s...":                  "%s を %s へ展開中...",
		"Extracted %d frames to %s":               "%d フレームを %s へ展開しました",
		"Assembling %d frames from %s at %s fps...": "%d フレームを %s から %s fps で作成中...",
		"Output saved to %s":                      "出力を %s に保存しました",

		// Writer diagnostics (debug)
		"Normalized frame rate %v to %s":  "フレームレート %v を %s に正規化しました",
		"Opened container %s":             "コンテナ %s を開きました",
		"Created %s stream, pixel format %s, bit rate %d": "%s ストリームを作成しました (ピクセルフォーマット %s, ビットレート %d)",
		"Stream size set to %dx%d":        "ストリームサイズを %dx%d に設定しました",
		"Container finalized":             "コンテナを確定しました",

		// Warnings
		"Frame rate %v did not normalize to a rational, passing raw value %s": "フレームレート %v を有理数に正規化できませんでした。生の値 %s を渡します",

		// Errors
		"Failed to create %s stream with rate %s, available codecs: %v": "%s ストリームをレート %s で作成できませんでした。利用可能なコーデック: %v",
	})
}
