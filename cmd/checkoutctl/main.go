// checkoutctl is a CLI tool for driving checkout flows through agentd.
// Each command performs a single step, making it composable for scripts.
//
// Commands:
//
//	checkoutctl summary -server URL
//	checkoutctl address -server URL [-city CITY] [-separate-shipping]
//	checkoutctl shipping -server URL -method RATE
//	checkoutctl payment -server URL -method CODE
//	checkoutctl order -server URL
//	checkoutctl coupon -server URL -code CODE | -remove
//	checkoutctl state -server URL
//
// Examples:
//
//	checkoutctl address -server http://localhost:8080
//	METHOD=$(checkoutctl shipping -server http://localhost:8080 -method flatrate_flatrate -q)
//	checkoutctl payment -server http://localhost:8080 -method cashondelivery
//	checkoutctl order -server http://localhost:8080
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

var client = &http.Client{Timeout: 30 * time.Second}

// Global flags (apply to all commands)
var (
	serverURL string
	quiet     bool
	noColor   bool
	verbose   bool
)

// ANSI color codes
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func disableColors() {
	colorReset, colorRed, colorGreen, colorYellow = "", "", "", ""
	colorBlue, colorCyan, colorGray, colorBold = "", "", "", ""
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "summary":
		runSummary(args)
	case "address":
		runAddress(args)
	case "shipping":
		runShipping(args)
	case "payment":
		runPayment(args)
	case "order":
		runOrder(args)
	case "coupon":
		runCoupon(args)
	case "state":
		runState(args)
	case "-h", "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `checkoutctl - storefront checkout flow test tool

Usage:
  checkoutctl <command> [options]

Commands:
  summary   Show the current cart with server-computed totals
  address   Submit billing/shipping addresses, listing shipping options
  shipping  Select a shipping rate, listing payment methods
  payment   Select a payment method
  order     Place the order
  coupon    Apply or remove a discount code
  state     Show checkout progress

Examples:
  # Walk the full flow against a local agentd
  checkoutctl address -server http://localhost:8080
  checkoutctl shipping -server http://localhost:8080 -method flatrate_flatrate
  checkoutctl payment -server http://localhost:8080 -method cashondelivery
  checkoutctl order -server http://localhost:8080

  # Apply a discount mid-flow
  checkoutctl coupon -server http://localhost:8080 -code SAVE10

Run 'checkoutctl <command> -h' for command-specific options.
`)
}

// commonFlags registers the flags shared by every command.
func commonFlags(fs *flag.FlagSet) {
	fs.StringVar(&serverURL, "server", "http://localhost:8080", "agentd base URL")
	fs.BoolVar(&quiet, "q", false, "Quiet mode - minimal output")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&verbose, "v", false, "Verbose - show full request/response")
}

// =============================================================================
// SUMMARY COMMAND
// =============================================================================

func runSummary(args []string) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	commonFlags(fs)
	fs.Parse(args)

	if noColor {
		disableColors()
	}

	resp, err := doRequest("GET", "/checkout/summary", nil)
	if err != nil {
		fatal("Failed to fetch summary: %v", err)
	}

	if quiet {
		fmt.Println(moneyString(resp["grand_total"]))
		return
	}

	printSuccess("Cart summary")
	if items, ok := resp["items"].([]interface{}); ok {
		for _, item := range items {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			fmt.Printf("  %v x %s%v%s  %s\n",
				m["quantity"], colorCyan, m["name"], colorReset, moneyString(m["total"]))
		}
	}
	if code := jsonString(resp["coupon_code"]); code != "" {
		fmt.Printf("  Coupon: %s%s%s\n", colorYellow, code, colorReset)
	}
	fmt.Printf("  Total: %s%s%s\n", colorGreen, moneyString(resp["grand_total"]), colorReset)
}

// =============================================================================
// ADDRESS COMMAND
// =============================================================================

func runAddress(args []string) {
	fs := flag.NewFlagSet("address", flag.ExitOnError)
	commonFlags(fs)

	var firstName, lastName, email, street, city, postcode, country, phone string
	var separateShipping bool
	var billingID, shippingID int64

	fs.StringVar(&firstName, "first", "Test", "First name")
	fs.StringVar(&lastName, "last", "Buyer", "Last name")
	fs.StringVar(&email, "email", "test@example.com", "Email")
	fs.StringVar(&street, "street", "150 Elgin Street", "Street line")
	fs.StringVar(&city, "city", "Ottawa", "City")
	fs.StringVar(&postcode, "postcode", "K2P 1L4", "Postal code")
	fs.StringVar(&country, "country", "CA", "Country code")
	fs.StringVar(&phone, "phone", "+16135551234", "Phone number")
	fs.BoolVar(&separateShipping, "separate-shipping", false, "Send a distinct shipping address instead of mirroring billing")
	fs.Int64Var(&billingID, "billing-id", 0, "Saved billing address ID (authenticated mode)")
	fs.Int64Var(&shippingID, "shipping-id", 0, "Saved shipping address ID (authenticated mode)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: checkoutctl address [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if noColor {
		disableColors()
	}

	address := map[string]interface{}{
		"first_name": firstName,
		"last_name":  lastName,
		"email":      email,
		"address1":   []string{street},
		"city":       city,
		"postcode":   postcode,
		"country":    country,
		"phone":      phone,
	}

	reqBody := map[string]interface{}{
		"billing":          address,
		"use_for_shipping": !separateShipping,
	}
	if separateShipping {
		reqBody["shipping"] = address
	}
	if billingID != 0 {
		reqBody = map[string]interface{}{
			"billing_address_id":  billingID,
			"shipping_address_id": shippingID,
		}
	}

	resp, err := doRequest("POST", "/checkout/address", reqBody)
	if err != nil {
		fatal("Failed to save address: %v", err)
	}

	if quiet {
		fmt.Println(jsonString(resp["state"]))
		return
	}

	printSuccess("Address saved")
	printShippingOptions(resp)
}

func printShippingOptions(resp map[string]interface{}) {
	options, ok := resp["shipping_options"].([]interface{})
	if !ok || len(options) == 0 {
		printWarning("No shipping options returned")
		return
	}

	fmt.Printf("  %sShipping options:%s\n", colorYellow, colorReset)
	for _, opt := range options {
		m, ok := opt.(map[string]interface{})
		if !ok {
			continue
		}
		rates, _ := m["rates"].([]interface{})
		for _, rate := range rates {
			r, ok := rate.(map[string]interface{})
			if !ok {
				continue
			}
			fmt.Printf("    - %s%v%s: %v (%v)\n",
				colorCyan, r["method"], colorReset, r["method_title"], jsonString(r["formatted_price"]))
		}
	}
}

// =============================================================================
// SHIPPING COMMAND
// =============================================================================

func runShipping(args []string) {
	fs := flag.NewFlagSet("shipping", flag.ExitOnError)
	commonFlags(fs)
	var method string
	fs.StringVar(&method, "method", "", "Shipping rate identifier (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: checkoutctl shipping -method RATE [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if noColor {
		disableColors()
	}
	if method == "" {
		fs.Usage()
		os.Exit(1)
	}

	resp, err := doRequest("POST", "/checkout/shipping-method", map[string]string{
		"shipping_method": method,
	})
	if err != nil {
		fatal("Failed to select shipping method: %v", err)
	}

	if quiet {
		fmt.Println(jsonString(resp["state"]))
		return
	}

	printSuccess("Shipping method selected: %s", method)

	options, ok := resp["payment_options"].([]interface{})
	if !ok || len(options) == 0 {
		printWarning("No payment methods returned")
		return
	}
	fmt.Printf("  %sPayment methods:%s\n", colorYellow, colorReset)
	for _, opt := range options {
		m, ok := opt.(map[string]interface{})
		if !ok {
			continue
		}
		fmt.Printf("    - %s%v%s: %v\n", colorCyan, m["method"], colorReset, m["method_title"])
	}
}

// =============================================================================
// PAYMENT COMMAND
// =============================================================================

func runPayment(args []string) {
	fs := flag.NewFlagSet("payment", flag.ExitOnError)
	commonFlags(fs)
	var method string
	fs.StringVar(&method, "method", "", "Payment method code (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: checkoutctl payment -method CODE [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if noColor {
		disableColors()
	}
	if method == "" {
		fs.Usage()
		os.Exit(1)
	}

	resp, err := doRequest("POST", "/checkout/payment-method", map[string]string{
		"method": method,
	})
	if err != nil {
		fatal("Failed to select payment method: %v", err)
	}

	if quiet {
		fmt.Println(jsonString(resp["state"]))
		return
	}
	printSuccess("Payment method selected: %s", method)
}

// =============================================================================
// ORDER COMMAND
// =============================================================================

func runOrder(args []string) {
	fs := flag.NewFlagSet("order", flag.ExitOnError)
	commonFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: checkoutctl order [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if noColor {
		disableColors()
	}

	resp, err := doRequest("POST", "/checkout/order", map[string]string{})
	if err != nil {
		fatal("Failed to place order: %v", err)
	}

	incrementID := jsonString(resp["increment_id"])
	if quiet {
		fmt.Println(incrementID)
		return
	}

	printSuccess("Order placed!")
	fmt.Printf("  Order: %s%s%s\n", colorGreen, incrementID, colorReset)
	if status := jsonString(resp["status"]); status != "" {
		fmt.Printf("  Status: %s%s%s\n", colorCyan, status, colorReset)
	}
	if total := jsonString(resp["formatted_grand_total"]); total != "" {
		fmt.Printf("  Total: %s%s%s\n", colorGreen, total, colorReset)
	}
}

// =============================================================================
// COUPON COMMAND
// =============================================================================

func runCoupon(args []string) {
	fs := flag.NewFlagSet("coupon", flag.ExitOnError)
	commonFlags(fs)
	var code string
	var remove bool
	fs.StringVar(&code, "code", "", "Discount code to apply")
	fs.BoolVar(&remove, "remove", false, "Remove the applied code")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: checkoutctl coupon -code CODE | -remove [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if noColor {
		disableColors()
	}
	if code == "" && !remove {
		fs.Usage()
		os.Exit(1)
	}

	var resp map[string]interface{}
	var err error
	if remove {
		resp, err = doRequest("DELETE", "/checkout/coupon", nil)
	} else {
		resp, err = doRequest("POST", "/checkout/coupon", map[string]string{"code": code})
	}
	if err != nil {
		fatal("Coupon request failed: %v", err)
	}

	if quiet {
		fmt.Println(jsonString(resp["coupon_code"]))
		return
	}

	if remove {
		printSuccess("Coupon removed")
	} else {
		printSuccess("Coupon applied: %s", code)
	}
	fmt.Printf("  Total: %s%s%s\n", colorGreen, moneyString(resp["grand_total"]), colorReset)
}

// =============================================================================
// STATE COMMAND
// =============================================================================

func runState(args []string) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	commonFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: checkoutctl state [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if noColor {
		disableColors()
	}

	resp, err := doRequest("GET", "/checkout/state", nil)
	if err != nil {
		fatal("Failed to fetch state: %v", err)
	}

	state := jsonString(resp["state"])
	if quiet {
		fmt.Println(state)
		return
	}

	printSuccess("Checkout state")
	fmt.Printf("  State: %s%s%s\n", colorCyan, state, colorReset)
	if method := jsonString(resp["shipping_method"]); method != "" {
		fmt.Printf("  Shipping: %s\n", method)
	}
	if payment, ok := resp["payment"].(map[string]interface{}); ok {
		confirmed, _ := payment["Confirmed"].(bool)
		marker := colorYellow + "pending" + colorReset
		if confirmed {
			marker = colorGreen + "confirmed" + colorReset
		}
		fmt.Printf("  Payment: %v (%s)\n", payment["Method"], marker)
	}
}

// =============================================================================
// HTTP HELPERS
// =============================================================================

func doRequest(method, path string, body interface{}) (map[string]interface{}, error) {
	var reqBody io.Reader
	var reqJSON []byte

	if body != nil {
		var err error
		reqJSON, err = json.MarshalIndent(body, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(reqJSON)
	}

	req, err := http.NewRequest(method, serverURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if !quiet {
		printRequest(method, path, reqJSON)
	}

	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)

	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if !quiet {
		printResponse(resp.StatusCode, respBody, duration)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, errorMessage(respBody))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return result, nil
}

// errorMessage extracts the server's error message for terse failures.
func errorMessage(body []byte) string {
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Error.Message == "" {
		return string(body)
	}
	return fmt.Sprintf("%s: %s", resp.Error.Code, resp.Error.Message)
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func printRequest(method, path string, body []byte) {
	fmt.Printf("\n%s▶ REQUEST%s %s%s %s%s\n", colorYellow, colorReset, colorBold, method, path, colorReset)
	if body != nil {
		printJSON(body, "  ")
	}
}

func printResponse(status int, body []byte, duration time.Duration) {
	statusColor := colorGreen
	if status >= 400 {
		statusColor = colorRed
	}
	fmt.Printf("\n%s◀ RESPONSE%s %s%d%s (%v)\n", colorCyan, colorReset, statusColor, status, colorReset, duration)
	printJSON(body, "  ")
}

func printJSON(data []byte, prefix string) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, prefix, "  "); err != nil {
		fmt.Printf("%s%s\n", prefix, string(data))
		return
	}

	output := pretty.String()
	if !verbose {
		lines := strings.Split(output, "\n")
		if len(lines) > 30 {
			lines = append(lines[:25], fmt.Sprintf("%s  %s(%d more lines, use -v for full output)%s", prefix, colorGray, len(lines)-25, colorReset))
			output = strings.Join(lines, "\n")
		}
	}
	fmt.Println(output)
}

func printSuccess(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
	}
}

func printWarning(format string, args ...interface{}) {
	fmt.Printf("%s⚠ %s%s\n", colorYellow, fmt.Sprintf(format, args...), colorReset)
}

func jsonString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// moneyString renders a money object, preferring the server's formatted
// string and falling back to minor units.
func moneyString(v interface{}) string {
	m, ok := v.(map[string]interface{})
	if !ok {
		return ""
	}
	if formatted := jsonString(m["formatted"]); formatted != "" {
		return formatted
	}
	if cents, ok := m["cents"].(float64); ok {
		return fmt.Sprintf("%.2f", cents/100)
	}
	return ""
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
	os.Exit(1)
}
