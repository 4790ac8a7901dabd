package services

// 予測分析エンジンは以下のファイルに分割されています：
//
// - analytics_core.go: AnalyticsService構造体、設計定数、Params
// - analytics_errors.go: ErrInvalidInput / ErrConfiguration と AnalyticsError
// - analytics_random.go: 予測に加えるノイズ源（NoiseSource）
// - analytics_math.go: 平均・標準偏差・回帰・金額の丸め
// - analytics_trend.go: トレンド推定と季節係数（TrendEstimator / SeasonalityEstimator）
// - analytics_forecast.go: 需要予測と売上予測
// - analytics_churn.go: 解約リスクスコア
// - analytics_recommendation.go: 商品推薦
// - analytics_inventory.go: 在庫最適化（安全在庫・発注点・EOQ）
// - analytics_anomaly.go: Zスコアによる異常検知
//
// record_import.go はアップロードされた .xlsx / .csv を時系列に変換します。
// monitoring_service.go はHTTP層のリクエスト記録を担当し、エンジンとは独立しています。
