package auth

import (
	"fmt"
	"strings"
)

// ShowClientSetupGuide prints how to create Battle.net API client
// credentials.
func ShowClientSetupGuide() {
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println("🔑 BATTLE.NET API CLIENT SETUP")
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println()

	fmt.Println("wowprofile reads your character through the Battle.net profile API,")
	fmt.Println("which needs an API client (a client ID and a client secret).")
	fmt.Println()

	fmt.Println("🌐 STEP 1: Open the developer portal")
	fmt.Println("   - Go to https://develop.battle.net/access/clients")
	fmt.Println("   - Log in with your Battle.net account")
	fmt.Println()

	fmt.Println("🛠  STEP 2: Create a client")
	fmt.Println("   - Click 'Create Client'")
	fmt.Println("   - Any name works, e.g. 'wowprofile'")
	fmt.Println("   - Redirect URLs can stay empty; the client-credentials flow does not use them")
	fmt.Println()

	fmt.Println("📋 STEP 3: Copy the credentials")
	fmt.Println("   - Client ID is shown on the client page")
	fmt.Println("   - Client Secret is revealed once; generate a new one if you lose it")
	fmt.Println()

	fmt.Println("💡 TIPS:")
	fmt.Println("   • Store them with: wowprofile auth login")
	fmt.Println("   • Or export WOWPROFILE_CLIENT_ID and WOWPROFILE_CLIENT_SECRET (CI friendly)")
	fmt.Println()

	fmt.Println("⚠️  SECURITY WARNING:")
	fmt.Println("   • Anyone with the secret can spend your API quota")
	fmt.Println("   • Never commit it; use repository secrets in CI")
	fmt.Println()
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println()
}

// ShowQuickSetupGuide shows a condensed version for experienced users
func ShowQuickSetupGuide() {
	fmt.Println("\n🔑 Quick Guide: https://develop.battle.net/access/clients → Create Client → copy ID and secret")
	fmt.Println("   Type 'help' for detailed instructions")
}
