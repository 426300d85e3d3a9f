package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Starting first pass":                "ファーストパスを開始します",
		"Starting last pass":                 "ラストパスを開始します",
		"Starting single pass encode":        "シングルパスエンコードを開始します",
		"Encode completed successfully":      "エンコードが正常に完了しました",
		"Output saved to %s":                 "出力を %s に保存しました",
		"Interrupted, shutting down...":      "中断されました。シャットダウン中...",

		// Analyze stage
		"Analyzing %d frames":                       "%d フレームを解析中",
		"First pass produced %d records (%d bytes)": "ファーストパスで %d レコード (%d バイト) を生成しました",

		// Encode stage
		"Encoding %d frames at %.1f fps":          "%d フレームを %.1f fps でエンコード中",
		"Encoding with target bitrate %d kbps":    "目標ビットレート %d kbps でエンコード中",
		"Encoding with quality %d":                "品質 %d でエンコード中",
		"Video encoded: %d packets, %d bytes":     "動画エンコード完了: %d パケット, %d バイト",

		// Session
		"End of stream after %d frames":                       "%d フレームでストリーム終端",
		"Flush complete: %d frames in, %d frame packets out":  "フラッシュ完了: 入力 %d フレーム, 出力 %d フレームパケット",

		// Warnings
		"Stats input rejected, falling back to single-pass heuristics: %s": "統計入力を拒否しました。シングルパスのヒューリスティクスにフォールバックします: %s",
		"Stats input covers %d frames but more were submitted, quality may degrade": "統計入力は %d フレーム分ですが、それ以上が送信されました。品質が低下する可能性があります",

		// Errors
		"First pass failed: %s":  "ファーストパスに失敗しました: %s",
		"Last pass failed: %s":   "ラストパスに失敗しました: %s",
		"Failed to mux MP4: %s":  "MP4の多重化に失敗しました: %s",
	})
}
