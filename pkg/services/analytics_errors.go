package services

import (
	"errors"
	"fmt"
	"math"
)

// 呼び出し側が errors.Is で判別するためのエラー種別
var (
	// ErrInvalidInput 入力データの形状・値が不正（空の系列、NaN、負の数量など）
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfiguration パラメータが範囲外（daysAhead <= 0, threshold <= 0 など）
	ErrConfiguration = errors.New("configuration error")
)

// AnalyticsError 分析エンジンが返す型付きエラー
type AnalyticsError struct {
	Kind  error  // ErrInvalidInput or ErrConfiguration
	Op    string // 失敗した操作名
	Field string // 問題のあるフィールド（任意）
	Msg   string
}

func (e *AnalyticsError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %v: %s: %s", e.Op, e.Kind, e.Field, e.Msg)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Msg)
}

func (e *AnalyticsError) Unwrap() error {
	return e.Kind
}

func invalidInput(op, field, format string, args ...interface{}) error {
	return &AnalyticsError{Kind: ErrInvalidInput, Op: op, Field: field, Msg: fmt.Sprintf(format, args...)}
}

func configError(op, field, format string, args ...interface{}) error {
	return &AnalyticsError{Kind: ErrConfiguration, Op: op, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// IsClientError 入力起因のエラー（HTTP 400 相当）かどうかを判定
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrConfiguration)
}

// checkFinite NaN / ±Inf を拒否する
func checkFinite(op, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalidInput(op, field, "value must be a finite number, got %v", v)
	}
	return nil
}

// checkNonNegative 有限かつ0以上であることを確認
func checkNonNegative(op, field string, v float64) error {
	if err := checkFinite(op, field, v); err != nil {
		return err
	}
	if v < 0 {
		return invalidInput(op, field, "value must not be negative, got %v", v)
	}
	return nil
}

// checkPositive 有限かつ0より大きいことを確認
func checkPositive(op, field string, v float64) error {
	if err := checkFinite(op, field, v); err != nil {
		return err
	}
	if v <= 0 {
		return invalidInput(op, field, "value must be positive, got %v", v)
	}
	return nil
}

// checkOverflow 計算途中で float64 の範囲を超えた値 (±Inf / NaN) を拒否する
func checkOverflow(op, field string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalidInput(op, field, "value overflows float64 range")
		}
	}
	return nil
}
