// Package main provides localization for the twopass CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Two-pass block video encoder for raw I420 input": "生I420入力のための2パスブロック動画エンコーダー",

		// Encode command
		"Encode a raw I420 file as MP4 video": "生I420ファイルをMP4動画としてエンコード",

		// Analyze command
		"Run the analysis pass only and save the stats file": "解析パスのみ実行し統計ファイルを保存",

		// Demo command
		"Encode a synthetic test pattern as MP4 video": "合成テストパターンをMP4動画としてエンコード",

		// Version command
		"Show version information": "バージョン情報を表示",
		"twopass version %s":       "twopass バージョン %s",

		// Required flags
		"Output MP4 file path (required)":   "出力MP4ファイルパス（必須）",
		"Output stats file path (required)": "出力統計ファイルパス（必須）",

		// Video flags
		"Frame width in pixels (must be even)":  "フレーム幅（ピクセル、偶数）",
		"Frame height in pixels (must be even)": "フレーム高さ（ピクセル、偶数）",
		"Frames per second":                     "フレームレート",

		// Encoding flags
		"Quality preset (low, medium, high)":                          "品質プリセット（low, medium, high）",
		"Base quantizer (0-63, lower is better, overrides preset)":    "基本量子化値（0-63、低いほど高品質、プリセットを上書き）",
		"Target bitrate in kbps (0 = quality only, overrides preset)": "目標ビットレート（kbps、0=品質のみ、プリセットを上書き）",
		"Frames buffered before the first packet is emitted":          "最初のパケット出力までにバッファされるフレーム数",
		"Maximum frames between keyframes":                            "キーフレーム間の最大フレーム数",
		"Skip the analysis pass":                                      "解析パスをスキップ",
		"Reuse a stats file from a previous analyze run":              "以前のanalyze実行の統計ファイルを再利用",
		"Reject malformed stats instead of degrading to single pass":  "不正な統計をシングルパスへ劣化させず拒否",

		// Config flags
		"YAML config file path": "YAML設定ファイルパス",

		// Demo flags
		"Number of synthetic frames to generate":           "生成する合成フレーム数",
		"Frame index of the synthetic scene cut (-1 = none)": "合成シーンカットのフレーム番号（-1=なし）",

		// Debug flags
		"Enable debug output":        "デバッグ出力を有効化",
		"Directory for debug output": "デバッグ出力ディレクトリ",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "すべてのログ出力を抑制",

		// Runtime messages
		"Interrupted, shutting down...":           "中断されました。終了しています...",
		"exactly one input file is required":      "入力ファイルを1つだけ指定してください",
		"width and height are required":           "幅と高さの指定が必要です",
		"Encoding %d frames from %s...":           "%d フレームを %s からエンコード中...",
		"Analyzing %d frames from %s...":          "%d フレームを %s から解析中...",
		"Encoding %d synthetic frames...":         "%d 個の合成フレームをエンコード中...",
		"Stats saved to %s (%d records, %d bytes)": "統計を %s に保存しました（%d レコード、%d バイト）",
		"Output saved to %s (%d frames, %d keyframes, %d bytes)": "%s に保存しました（%d フレーム、%d キーフレーム、%d バイト）",
	})
}
