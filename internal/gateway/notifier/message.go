package notifier

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// 交易通知的统一文案。Markdown 里 mint 地址放反引号内，避免被转义弄脏。

func BuyMessage(mint, tier string, amountSOL, price decimal.Decimal) string {
	var b strings.Builder
	b.WriteString("🟢 *买入成交*\n")
	fmt.Fprintf(&b, "Mint: `%s`\n", mint)
	fmt.Fprintf(&b, "级别: %s\n", tier)
	fmt.Fprintf(&b, "投入: %s SOL\n", amountSOL.String())
	fmt.Fprintf(&b, "单价: %s SOL", price.String())
	return b.String()
}

func SellMessage(mint, reason string, sellPercent, receivedSOL, pnlUSD decimal.Decimal) string {
	var b strings.Builder
	b.WriteString("🔴 *卖出成交*\n")
	fmt.Fprintf(&b, "Mint: `%s`\n", mint)
	fmt.Fprintf(&b, "原因: %s\n", reason)
	fmt.Fprintf(&b, "比例: %s%%\n", sellPercent.String())
	fmt.Fprintf(&b, "回收: %s SOL\n", receivedSOL.String())
	fmt.Fprintf(&b, "累计盈亏: %s USD", pnlUSD.StringFixed(2))
	return b.String()
}

func SellFailedMessage(mint string, attempts int) string {
	return fmt.Sprintf("⚠️ *卖出失败*\nMint: `%s`\n重试 %d 次后放弃，仓位保留待下轮处理", mint, attempts)
}

func GlobalStopMessage(pnlUSD, floorUSD decimal.Decimal) string {
	return fmt.Sprintf("🛑 *全局止损触发*\n累计盈亏 %s USD 已跌破 %s USD，停止一切交易",
		pnlUSD.StringFixed(2), floorUSD.StringFixed(2))
}
