package appstream

import "strings"

// knownTLDs holds the IANA top-level domains recognized in reverse-domain
// component ids. Internationalized (xn--) and very long brand TLDs are
// excluded on purpose.
var knownTLDs = map[string]bool{}

func init() {
	for _, tld := range strings.Fields(tldData) {
		knownTLDs[tld] = true
	}
}

// IsTLD reports whether the given string is a known top-level domain.
// The check is case-insensitive.
func IsTLD(s string) bool {
	return knownTLDs[strings.ToLower(s)]
}

const tldData = `
ac ad ae aero af ag ai al am ao aq ar arpa as asia at au aw ax az
ba band bar bb bd be best bf bg bh bi bid bike bio biz bj blog blue bm bn bo
br bs bt buzz bw by bz
ca cafe cam camp cards care casa cash cat cc cd cf cg ch chat ci city ck cl
club cm cn co codes cool coop com cx cy cz
day de dev dj dk dm do dog dz
ec edu ee eg es et eu expo
farm fi fit fj fk fm fo foo fr fun fund fyi
ga game gay gb gd ge gg gh gi gift gl gm gn gold golf gov gp gq gr gs gt gu
guru gw gy
haus help here hk hm hn host how hr ht hu
icu id ie il im in info inc ink int io iq ir is it
je jm jo jobs jp
ke kg kh ki kim kiwi km kn kp kr kw ky kz
la land lat lb lc li life like link live lk loan lol love lr ls lt ltd lu
luxe lv ly
ma mba mc md me men menu mg mh mil mk ml mm mn mo mobi moe mom mov mp mq mr
ms mt mu museum mv mw mx my mz
na name nc ne net new news nf ng ngo ni nl no np nr nu nz
om one ong onl ooo org ovh
pa page pe pet pf pg ph phd pics pink pk pl play plus pm pn post pr pro ps
pt pub pw py
qa quest
re red rent rest rich rio rip ro rs ru run rw
sa sale sarl sb sc sd se sexy sg sh shop show si site sj sk ski sky sl sm
sn so soy sr ss st su surf sv sx sy sz
tax tc td team tech tel tf tg th tips tj tk tl tm tn to top town toys tr
tt tube tv tw tz
ua ug uk uno us uy uz
va vc ve vg vi vip vn vote vu
wang web wiki win wine work ws wtf
xyz
ye yoga yt
za zip zm zone zw
`
