package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	// 第2引数に"down"を指定すると1ステップ戻す。
	CommandMigrate Command = "migrate"
	// CommandSeed はサンプルユーザーとサンプルブログを投入することを示す。
	CommandSeed Command = "seed"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "serve":
		return CommandServe
	case "migrate":
		return CommandMigrate
	case "seed":
		return CommandSeed
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}

// migrateDirection はmigrateサブコマンドの方向を解析する。
// "down"以外はすべて"up"として扱う。
func migrateDirection(args []string) string {
	if len(args) > 1 && args[1] == "down" {
		return "down"
	}
	return "up"
}
