// Package upstream は上流APIへの呼び出しを一箇所に集約するクライアントを提供する。
//
// すべての転送系エンドポイントはここで定義するOperationを組み立てて
// Callを呼ぶだけであり、資格情報の付与・クエリ構築・応答の正規化・
// エラー変換のロジックはエンドポイント間で重複しない。
package upstream
