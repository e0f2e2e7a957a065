package scanning

// certificateScanPrompt is the shared prompt used by all LLM providers for scanning certificates
const certificateScanPrompt = `You are analyzing a game certification document issued by a testing laboratory. Carefully read all text in the document and extract the following information:

1. **Report Number**: The certificate or report reference number, usually near the top of the document. Examples: "MT-2024-00123", "GLI-12345-REV1".

2. **Certification Date**: The date the certificate was issued or signed. Keep the date text exactly as it appears on the document.

3. **Supplier Registration Number**: The supplier's registration or license number if present on the document.

4. **Games**: Every certified game listed on the document. For each game capture:
   - the game name exactly as printed
   - the game code or module identifier if present
   - every associated file with its MD5 and/or SHA1 checksum when listed

Return ONLY valid JSON in this exact format:
{
  "report_number": "string or null",
  "certification_date": "string or null",
  "supplier_registration_number": "string or null",
  "games": [
    {
      "game_name": "string or null",
      "game_code": "string or null",
      "files": [
        {"name": "string", "md5": "string or null", "sha1": "string or null"}
      ]
    }
  ]
}

Important:
- If you cannot find a field, use null for that field
- Use an empty array for "games" when the document lists no games
- Do not include any text before or after the JSON
- Do not use markdown code blocks`
