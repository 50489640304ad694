package records

const Example = `{
    "strings": [
        {
            "text": "This is a string",
            "address": "0xC54E10"
        },
        {
            "text": "This string starts right after the previous string"
        },
        {
            "text": "Strings after this one will be looked for relative to this address (if their address is not given)",
            "address": 12930592
        }
    ]
}`

const Help = `The JSON file should have only 1 object called "strings", which contains an array of objects,
each with 2 elements: "text" and "address". "text" is the new string that will replace the old string at "address".
"address" must be a valid file offset in the input eboot, and can be either written in hex (as a string) or in decimal.

If "address" is not given, the address of the string right after the previous string (aligned to 8 bytes) will be used.

IMPORTANT: if an entry is removed from the JSON after running the tool once, a clean EBOOT should be used.
Otherwise, running the tool multiple times on the same EBOOT with --update has no side effects.`
