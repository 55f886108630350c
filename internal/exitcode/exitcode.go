// Package exitcode はCLIの終了コードを定義します。
package exitcode

const (
	// Success は正常終了です。
	Success = 0

	// UserError は引数やフラグの誤りです。
	UserError = 1

	// BackendError はAPI・ネットワークのエラーです。
	BackendError = 3
)
