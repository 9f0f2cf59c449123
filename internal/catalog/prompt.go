package catalog

import "strings"

// DetectionSystemPrompt primes the vision model for the detection task.
const DetectionSystemPrompt = `あなたは食事画像から食品を特定し、重量を推定する専門家です。画像を詳細に分析し、提供された食品リストから最も適切な食品を選択し、視覚的な手がかり（サイズ、容器、一般的なサイズ感など）を基に重量を推定してください。結果は必ず指定されたJSON形式で返してください。`

// BuildContext renders the snapshot as structured text: one section per food
// group in snapshot order, one line per item with its id and optional remarks.
// The output is a pure function of the snapshot; changing the catalog and
// re-running changes the context proportionally.
func BuildContext(snap *Snapshot) string {
	var b strings.Builder
	lastGroup := ""
	first := true
	for _, it := range snap.Items {
		if it.GroupID != lastGroup {
			if !first {
				b.WriteString("\n")
			}
			b.WriteString("## ")
			b.WriteString(it.GroupName)
			b.WriteString("\n")
			lastGroup = it.GroupID
			first = false
		}
		b.WriteString("- ")
		b.WriteString(it.Name)
		b.WriteString(" (ID: ")
		b.WriteString(it.ID)
		b.WriteString(")")
		if it.Remarks != "" {
			b.WriteString(" [備考: ")
			b.WriteString(it.Remarks)
			b.WriteString("]")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// BuildDetectionPrompt wraps the catalog context with the detection task
// instructions, weight-estimation guidance and output rules.
func BuildDetectionPrompt(snap *Snapshot) string {
	var b strings.Builder
	b.WriteString(`## タスク
入力画像に写っている食品を以下のリストから特定し、それぞれのおおよその重量(g)を推定してください。

## 食品リスト（食品群ごとに分類）

`)
	b.WriteString(BuildContext(snap))
	b.WriteString(`
## 重量推定のガイダンス

- 視覚的なサイズ比較: 茶碗1杯のご飯 約100-120g、食パン1枚 約30-35g、卵1個 約50-60g、リンゴ1個 約200-250g、鶏もも肉1枚 約150-200g
- 容器のサイズ: 皿やボウルのサイズから全体量を推定してください
- 調理状態: 生の状態を基準に、調理後の見た目から生の重量を逆算してください

## 確信度の評価基準

- 0.9-1.0: 非常に確信がある（食品名が明確で、サイズもはっきり識別できる）
- 0.7-0.89: かなり確信がある（食品名は特定できるが、重量には多少の不確実性がある）
- 0.5-0.69: やや確信がある（食品名または重量のどちらかに不確実性がある）
- 0.3-0.49: 低い確信（推測の要素が大きい）

## 重要なルール

1. リストにない食品は無理に推定しないでください。一致する食品がない場合は空配列を返してください
2. 食品名が完全一致しなくても、見た目や特徴が近い場合は最も近い食品を選択してください（例: 「白米」→「精白米」）
3. 複数の食品が写っている場合は、すべての食品を検出してください
4. 重量は必ず g（グラム）単位の数値で返してください
5. 備考欄に重要な情報がある場合は必ず参照してください

## 出力形式

以下のJSON形式で返してください：

{"detections": [{"foodId": "食品のID（上記リストから選択）", "nameJp": "食品名（リストに記載されている正確な名前）", "weightGrams": 重量の数値, "confidence": 0.0-1.0の数値, "notes": "任意の補足情報"}]}

候補が見つからない場合は空配列を返してください: {"detections": []}
必ずJSONのみを返し、プレーンテキストや説明は含めないでください。`)
	return b.String()
}
